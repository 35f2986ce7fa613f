// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package export renders a project's translation data into downloadable
// archives: one file per enabled language plus one file per language per
// component, bundled into a single zip. Three target formats are supported:
// nested JSON, Android-style XML and Apple .strings.
package export

import (
	"errors"
	"fmt"
)

// Format names a supported export target.
type Format string

const (
	FormatJSON    Format = "json"
	FormatAndroid Format = "android"
	FormatApple   Format = "apple"
)

// ErrUnknownFormat is returned for format strings outside the supported set.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a client-supplied format string. The longer
// android_xml and apple_string spellings are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatAndroid, FormatApple:
		return Format(s), nil
	}
	switch s {
	case "android_xml":
		return FormatAndroid, nil
	case "apple_string", "apple_strings":
		return FormatApple, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension (with dot) for the format.
func (f Format) Extension() string {
	switch f {
	case FormatAndroid:
		return ".xml"
	case FormatApple:
		return ".strings"
	default:
		return ".json"
	}
}
