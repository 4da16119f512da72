package main

import (
	"os"

	"github.com/lynnxiaofeng/parkyoga/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
