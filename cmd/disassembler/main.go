package main

import (
	"fmt"
	"os"

	"github.com/amdgpu-tools/disassembler/internal/cli"
	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cerrors.ExitCode(err))
	}
}
