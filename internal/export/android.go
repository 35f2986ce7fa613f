// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package export

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/polyloc/polyloc/internal/tree"
)

// RenderAndroidXML renders an XML-safe nested object (labels slugified,
// text wrapped under tree.TextKey) as an indented XML document. The root
// element carries the language's export code, itself slugified, so each
// file is self-describing. Elements at every level appear in sorted order.
func RenderAndroidXML(languageCode string, obj map[string]any) ([]byte, error) {
	var b strings.Builder
	b.WriteString(xml.Header)

	root := tree.Slugify(languageCode)
	b.WriteString("<" + root + ">\n")
	if err := writeXMLLevel(&b, obj, 1); err != nil {
		return nil, err
	}
	b.WriteString("</" + root + ">\n")

	return []byte(b.String()), nil
}

func writeXMLLevel(b *strings.Builder, obj map[string]any, depth int) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	for _, key := range keys {
		child, ok := obj[key].(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected value of type %T under %q", obj[key], key)
		}

		if text, isLeaf := child[tree.TextKey]; isLeaf {
			str, ok := text.(string)
			if !ok {
				return fmt.Errorf("unexpected text of type %T under %q", text, key)
			}
			b.WriteString(indent + "<" + key + ">")
			if err := xml.EscapeText(b, []byte(str)); err != nil {
				return fmt.Errorf("escape text: %w", err)
			}
			b.WriteString("</" + key + ">\n")
			continue
		}

		b.WriteString(indent + "<" + key + ">\n")
		if err := writeXMLLevel(b, child, depth+1); err != nil {
			return err
		}
		b.WriteString(indent + "</" + key + ">\n")
	}
	return nil
}
