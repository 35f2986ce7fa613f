// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package export

import (
	"strings"

	"github.com/polyloc/polyloc/internal/tree"
)

// RenderAppleStrings renders flat dotted-path entries as an Apple .strings
// file, one `"key" = "value";` line per entry in the order given.
func RenderAppleStrings(entries []tree.Entry) []byte {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(`"`)
		b.WriteString(escapeStrings(e.Key))
		b.WriteString(`" = "`)
		b.WriteString(escapeStrings(e.Value))
		b.WriteString("\";\n")
	}
	return []byte(b.String())
}

var stringsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func escapeStrings(s string) string {
	return stringsEscaper.Replace(s)
}
