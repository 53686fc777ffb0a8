// Package version holds the disassembler build information.
package version

import (
	"fmt"
	"runtime"
)

// Set through -ldflags "-X github.com/amdgpu-tools/disassembler/pkg/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// String renders the multi-line block printed by --version.
func String() string {
	return fmt.Sprintf("disassembler version %s\nGit commit: %s\nBuild date: %s\nGo version: %s\n",
		Version, GitCommit, BuildDate, GoVersion)
}
