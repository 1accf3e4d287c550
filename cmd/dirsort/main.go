package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/dirsort/internal/cli"
	"github.com/ppiankov/dirsort/internal/runlock"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, runlock.ErrLocked) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
