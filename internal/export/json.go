// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package export

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// RenderJSON pretty-prints a nested key/value object with two-space
// indentation and a trailing newline. Map keys marshal in sorted order, so
// output is deterministic for identical input.
func RenderJSON(obj map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export json: %w", err)
	}
	return append(data, '\n'), nil
}
