// Command histx-api exposes the history index over HTTP for editor plugins
// and local tooling that cannot shell out to the CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pcarlton/histx/api/handlers"
	"github.com/pcarlton/histx/api/middleware"
	"github.com/pcarlton/histx/internal/index"
	"github.com/pcarlton/histx/internal/logging"
)

type Server struct {
	router *http.ServeMux
	port   string
}

func main() {
	var port string
	var claudeDir string

	flag.StringVar(&port, "port", "8080", "Port to run the API server on")
	flag.StringVar(&claudeDir, "claude-dir", "", "Claude directory to index (default: ~/.claude)")
	flag.Parse()

	if claudeDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatal("Failed to get home directory:", err)
		}
		claudeDir = filepath.Join(homeDir, ".claude")
	}

	logging.Init(logging.Config{Level: "info", Format: "text"})
	defer logging.Shutdown()

	build := func() (handlers.Index, error) {
		entries, err := index.Build(index.BuildOptions{ClaudeDir: claudeDir})
		if err != nil {
			return handlers.Index{}, err
		}
		return handlers.Index{Entries: entries, BuiltAt: time.Now()}, nil
	}

	server := NewServer(build, port)

	log.Printf("Starting API server on port %s", port)
	log.Printf("Claude directory: %s", claudeDir)
	log.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		log.Fatal("Server error:", err)
	}
}

func NewServer(build handlers.BuildFunc, port string) *Server {
	h := handlers.NewHandlers(build)

	router := http.NewServeMux()
	router.HandleFunc("GET /health", h.Health)
	router.HandleFunc("GET /search", h.Search)
	router.HandleFunc("GET /stats", h.Stats)

	return &Server{router: router, port: port}
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%s", s.port),
		Handler:      middleware.Logging(s.router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
