package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenFolder reveals dir in the platform file manager.
func OpenFolder(dir string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", dir)
	case "darwin":
		cmd = exec.Command("open", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	// Explorer exits non-zero even on success, so the exit status is ignored.
	go func() { _ = cmd.Wait() }()
	return nil
}
