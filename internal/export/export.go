// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/util"
)

// ErrEmptyLog is returned for a nil log or one without messages.
var ErrEmptyLog = errors.New("chat log has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a chat log in one format.
type Exporter interface {
	Export(log *model.ChatLog) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: working directory.
	OutputDir string

	// IncludeMetadata adds the front matter and the details section.
	IncludeMetadata bool

	// IncludeRetrieval lists retrieval steps after the transcript.
	IncludeRetrieval bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:        ".",
		IncludeMetadata:  true,
		IncludeRetrieval: true,
	}
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"md", "json"}

// ForFormat returns the exporter for "md"/"markdown" or "json".
func ForFormat(name string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (use md or json)", name)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders log and writes it under opts.OutputDir. It returns
// the written path.
func ExportToFile(log *model.ChatLog, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(log)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, Filename(log, exporter.FileExtension()))
	if err := util.AtomicWriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Filename builds chatlog_<mrn>_<yyyymmdd_hhmmss><ext> from the log's start
// time, or the current time when the start is unknown.
func Filename(log *model.ChatLog, ext string) string {
	at := time.Now()
	if log.StartedAt.Valid() {
		at = log.StartedAt.Time.Local()
	}
	mrn := sanitizeFilename(log.PatientMRN)
	if mrn == "" {
		mrn = "unknown"
	}
	return fmt.Sprintf("chatlog_%s_%s%s", mrn, at.Format("20060102_150405"), ext)
}

func validate(log *model.ChatLog) error {
	if log == nil || len(log.Messages) == 0 {
		return ErrEmptyLog
	}
	return nil
}

// sanitizeFilename keeps letters, digits, '-' and '_' and cuts to 40 runes.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '/' || r == '\\' || r == ':':
			b.WriteRune('_')
		}
	}
	return util.TruncateNoEllipsis(b.String(), 40)
}
