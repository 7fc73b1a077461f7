// tempfiles.go - Temporary receipt files under UPLOAD_DIR

package processor

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// TempFilePrefix marks files eligible for cleanup
const TempFilePrefix = "temp_"

// TempFileName builds temp_{12 hex of md5(user_media_ts)}_{ts}.{ext}
func TempFileName(userID, mediaID, ext string, now time.Time) string {
	ts := now.Unix()
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%d", userID, mediaID, ts)))
	return fmt.Sprintf("%s%s_%d.%s", TempFilePrefix, hex.EncodeToString(sum[:])[:12], ts, ext)
}

// SaveTempFile writes data under dir, creating it if needed
func SaveTempFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, nil
}

// RemoveTempFile deletes path, logging failures
func RemoveTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		common.Logger().Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
	}
}

// CleanupTempFiles removes temp_* files in dir older than maxAge and
// returns how many were deleted
func CleanupTempFiles(dir string, maxAge time.Duration) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create temp directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list temp directory: %w", err)
	}

	threshold := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), TempFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				common.Logger().Warn("failed to remove temp file", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			removed++
		}
	}
	common.Logger().Info("🧹 temp cleanup finished", zap.String("dir", dir), zap.Int("removed", removed))
	return removed, nil
}
