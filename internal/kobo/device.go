// Package kobo reads highlights from a mounted Kobo e-reader.
package kobo

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	onboardPrefix = "file:///mnt/onboard/"
	databaseName  = "KoboReader.sqlite"
)

// ErrDeviceNotFound is returned when no mounted device is detected.
var ErrDeviceNotFound = errors.New("kobo device not found")

// DatabasePath returns the location of the device database under drive.
func DatabasePath(drive string) string {
	return filepath.Join(drive, ".kobo", databaseName)
}

// IsDevice reports whether drive looks like a mounted e-reader.
func IsDevice(drive string) bool {
	if drive == "" {
		return false
	}
	info, err := os.Stat(DatabasePath(drive))
	return err == nil && !info.IsDir()
}

// DefaultCandidates lists the places a device is mounted on this OS. On
// Windows those are the drive roots; elsewhere they are mount bases whose
// children are checked.
func DefaultCandidates() []string {
	if runtime.GOOS == "windows" {
		roots := make([]string, 0, 26)
		for l := 'A'; l <= 'Z'; l++ {
			roots = append(roots, string(l)+`:\`)
		}
		return roots
	}

	bases := []string{"/Volumes", "/media"}
	if u, err := user.Current(); err == nil && u.Username != "" {
		bases = append(bases,
			filepath.Join("/media", u.Username),
			filepath.Join("/run/media", u.Username),
		)
	}
	return bases
}

// DetectDrive returns the first device found among candidates. A candidate
// is accepted when it is a device itself or when one of its direct
// subdirectories is.
func DetectDrive(candidates []string) (string, error) {
	for _, base := range candidates {
		if IsDevice(base) {
			return base, nil
		}

		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			potential := filepath.Join(base, entry.Name())
			if IsDevice(potential) {
				return potential, nil
			}
		}
	}
	return "", ErrDeviceNotFound
}

// ResolveDrive uses configured when it is a device and detects one
// otherwise.
func ResolveDrive(configured string) (string, error) {
	if configured != "" {
		if IsDevice(configured) {
			return filepath.Abs(configured)
		}
	}
	drive, err := DetectDrive(DefaultCandidates())
	if err != nil {
		if configured != "" {
			return "", fmt.Errorf("%w: %s is not a device and detection failed", err, configured)
		}
		return "", err
	}
	return drive, nil
}

// ResolveBookPath maps a volume locator to the book file on the mounted
// drive. Sideloaded books live at their onboard path; store books are kept
// in the hidden kepub directory under their base name.
func ResolveBookPath(drive, volumeID string) string {
	rel := strings.TrimPrefix(volumeID, onboardPrefix)
	direct := filepath.Join(drive, filepath.FromSlash(rel))
	if _, err := os.Stat(direct); err == nil {
		return direct
	}
	return filepath.Join(drive, ".kobo", "kepub", path.Base(volumeID))
}
