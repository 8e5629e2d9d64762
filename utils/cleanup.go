package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tts-guard-backend/config"

	"go.uber.org/zap"
)

// CleanupExpiredFiles removes regular files in dir whose modification time is
// older than ttl and returns how many were deleted. A missing dir is not an
// error.
func CleanupExpiredFiles(dir string, ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("error reading files directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= ttl {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			config.Logger.Warn("Error deleting expired file", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
