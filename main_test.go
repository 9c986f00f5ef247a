// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepath/carepath-tui/internal/config"
)

func restoreLog(t *testing.T) {
	t.Helper()
	out, flags, prefix := log.Writer(), log.Flags(), log.Prefix()
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
		log.SetPrefix(prefix)
	})
}

func TestOpenTUILog_WritesFile(t *testing.T) {
	restoreLog(t)
	dir := t.TempDir()
	t.Setenv("CAREPATH_HOME", dir)
	cfg := config.Default()
	cfg.UI.LogFile = filepath.Join(dir, "tui.log")

	f := openTUILog(cfg)
	require.NotNil(t, f)
	log.Printf("hello from the tui")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(cfg.UI.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the tui")
}

func TestOpenTUILog_UnwritableDiscards(t *testing.T) {
	restoreLog(t)
	dir := t.TempDir()
	t.Setenv("CAREPATH_HOME", dir)
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	cfg := config.Default()
	cfg.UI.LogFile = filepath.Join(blocker, "tui.log")

	log.SetOutput(os.Stderr)
	f := openTUILog(cfg)
	assert.Nil(t, f)
	assert.Equal(t, io.Discard, log.Writer())
}
