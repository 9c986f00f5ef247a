// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/carepath/carepath-tui/internal/model"
)

// JSONExporter writes the log in the data service's own JSON shape.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter { return &JSONExporter{} }

func (e *JSONExporter) FileExtension() string { return ".json" }
func (e *JSONExporter) MimeType() string      { return "application/json" }

// Export renders log as indented JSON.
func (e *JSONExporter) Export(log *model.ChatLog) ([]byte, error) {
	if err := validate(log); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal chat log: %w", err)
	}
	return append(data, '\n'), nil
}
