package main

import (
	"github.com/pcarlton/histx/internal/cli"
)

func main() {
	cli.Execute()
}
