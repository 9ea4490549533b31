package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/models"
)

var scanLog = logging.ForComponent(logging.CompScanner)

const (
	// HistoryFileName is the primary log of user prompts under the Claude dir.
	HistoryFileName = "history.jsonl"
	// ProjectsDirName holds one subdirectory per project.
	ProjectsDirName = "projects"

	conversationFilePrefix = "agent-"
	conversationFileSuffix = ".jsonl"

	maxProjects        = 1000
	maxFilesPerProject = 1000
)

// Snapshot is the current freshness view of a Claude directory: one
// fingerprint for the history log (nil when the file is missing) and one per
// discovered project, plus the file listings needed to reparse a project.
type Snapshot struct {
	ClaudeDir   string
	HistoryPath string
	Primary     *LogFingerprint
	Projects    map[string]ProjectFingerprint
	Infos       map[string]models.ProjectInfo
}

// Scan stats the history log and enumerates project directories. It reads no
// file contents. Projects that cannot be enumerated are logged and left out
// of the snapshot; they will be retried on the next run.
func Scan(claudeDir string) (*Snapshot, error) {
	snap := &Snapshot{
		ClaudeDir:   claudeDir,
		HistoryPath: filepath.Join(claudeDir, HistoryFileName),
		Projects:    make(map[string]ProjectFingerprint),
		Infos:       make(map[string]models.ProjectInfo),
	}

	fp, err := fingerprintFile(snap.HistoryPath)
	switch {
	case err == nil:
		snap.Primary = fp
	case os.IsNotExist(err):
		scanLog.Debug("history_log_missing", slog.String("path", snap.HistoryPath))
	default:
		return nil, fmt.Errorf("failed to stat history log: %w", err)
	}

	projects, err := DiscoverProjects(claudeDir)
	if err != nil {
		return nil, err
	}
	for _, info := range projects {
		pfp, err := fingerprintDir(info.Dir, len(info.ConversationFiles))
		if err != nil {
			scanLog.Warn("project_stat_failed",
				slog.String("project", info.EncodedName),
				slog.String("error", err.Error()))
			continue
		}
		snap.Projects[info.EncodedName] = *pfp
		snap.Infos[info.EncodedName] = info
	}

	return snap, nil
}

// DiscoverProjects lists project subdirectories under <claudeDir>/projects,
// decoding each directory name back to its filesystem path and collecting
// the conversation files inside. Directories with undecodable or unsafe
// names, symlinked entries, and unreadable directories are skipped with a
// warning. A missing projects directory yields an empty slice, not an error.
func DiscoverProjects(claudeDir string) ([]models.ProjectInfo, error) {
	projectsDir := filepath.Join(claudeDir, ProjectsDirName)

	dirEntries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory %s: %w", projectsDir, err)
	}

	var projects []models.ProjectInfo
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		if len(projects) >= maxProjects {
			scanLog.Warn("project_limit_reached", slog.Int("limit", maxProjects))
			break
		}

		encoded := entry.Name()
		dir := filepath.Join(projectsDir, encoded)

		decoded, err := DecodeAndValidatePath(encoded)
		if err != nil {
			scanLog.Warn("project_name_invalid",
				slog.String("name", encoded),
				slog.String("error", err.Error()))
			continue
		}
		if err := ValidateNotSymlink(dir); err != nil {
			scanLog.Warn("project_dir_skipped", slog.String("error", err.Error()))
			continue
		}

		files, err := listConversationFiles(dir)
		if err != nil {
			scanLog.Warn("project_unreadable",
				slog.String("project", encoded),
				slog.String("error", err.Error()))
			continue
		}

		projects = append(projects, models.ProjectInfo{
			EncodedName:       encoded,
			DecodedPath:       decoded,
			Dir:               dir,
			ConversationFiles: files,
		})
	}

	return projects, nil
}

func listConversationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, conversationFilePrefix) ||
			!strings.HasSuffix(name, conversationFileSuffix) {
			continue
		}
		if len(files) >= maxFilesPerProject {
			return nil, fmt.Errorf("more than %d conversation files in %s", maxFilesPerProject, dir)
		}
		path := filepath.Join(dir, name)
		if err := ValidateNotSymlink(path); err != nil {
			scanLog.Warn("conversation_file_skipped", slog.String("error", err.Error()))
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
