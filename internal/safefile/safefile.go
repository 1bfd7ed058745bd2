// Package safefile reads small local files that may hold secrets, such as the
// rtmsign config and dotenv files carrying the master key. Symlinks and
// oversized files are rejected.
package safefile

import (
	"fmt"
	"io/fs"
	"os"
)

// MaxSecretFileSize bounds config and dotenv files.
const MaxSecretFileSize = 64 * 1024

// RejectSymlink returns an error if path is a symbolic link.
// It uses Lstat so the check is not followed through the link.
func RejectSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s is a symbolic link (rejected for security)", path)
	}
	return nil
}

// ReadFileMax reads path after verifying it is not a symlink and that
// the file size does not exceed maxBytes.
func ReadFileMax(path string, maxBytes int64) ([]byte, error) {
	if err := RejectSymlink(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%s is too large (%d bytes, max %d)", path, info.Size(), maxBytes)
	}
	return os.ReadFile(path)
}

// ReadSecret reads a config or dotenv file with the default size limit.
func ReadSecret(path string) ([]byte, error) {
	return ReadFileMax(path, MaxSecretFileSize)
}

// IsPrivate reports whether path is readable only by its owner.
func IsPrivate(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().Perm()&fs.FileMode(0o077) == 0, nil
}
