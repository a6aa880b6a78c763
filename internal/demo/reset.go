// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"fmt"
	"log/slog"
	"os"
)

// Reset deletes the SQLite database at dbPath along with its WAL and
// shared-memory files. Missing files are ignored.
func Reset(dbPath string) error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", dbPath+suffix, err)
		}
	}
	slog.Info("demo database deleted", "path", dbPath)
	return nil
}
