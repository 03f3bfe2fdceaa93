// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package documents

import (
	"fmt"
	"strings"
)

// Kind is a document type, decided by file suffix.
type Kind string

const (
	KindText        Kind = "text"
	KindDrawing     Kind = "drawing"
	KindSpreadsheet Kind = "spreadsheet"
	KindUnknown     Kind = "unknown"
)

// Extension returns the suffix for k, or "" for KindUnknown.
func (k Kind) Extension() string {
	switch k {
	case KindText:
		return ".txt"
	case KindDrawing:
		return ".draw"
	case KindSpreadsheet:
		return ".sheet"
	default:
		return ""
	}
}

// Label is the human name shown in listings.
func (k Kind) Label() string {
	switch k {
	case KindText:
		return "Text"
	case KindDrawing:
		return "Drawing"
	case KindSpreadsheet:
		return "Spreadsheet"
	default:
		return "Unknown"
	}
}

// KindOf classifies name by its suffix.
func KindOf(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".txt"):
		return KindText
	case strings.HasSuffix(name, ".draw"):
		return KindDrawing
	case strings.HasSuffix(name, ".sheet"):
		return KindSpreadsheet
	default:
		return KindUnknown
	}
}

// ParseKind accepts a kind name, an extension or a short alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "text", "txt":
		return KindText, nil
	case "drawing", "draw":
		return KindDrawing, nil
	case "spreadsheet", "sheet":
		return KindSpreadsheet, nil
	default:
		return KindUnknown, fmt.Errorf("unknown document kind %q (use text, draw or sheet)", s)
	}
}

// WithExtension applies the naming rule for new documents of kind k: a name
// without a dot gets k's suffix; drawings and spreadsheets always end in
// their suffix; text keeps any known suffix and otherwise gets ".txt".
func WithExtension(name string, k Kind) string {
	ext := k.Extension()
	if ext == "" {
		return name
	}
	if !strings.Contains(name, ".") {
		name += ext
	}

	switch k {
	case KindDrawing, KindSpreadsheet:
		if !strings.HasSuffix(name, ext) {
			name += ext
		}
	case KindText:
		if KindOf(name) == KindUnknown {
			name += ext
		}
	}
	return name
}

// DefaultContent is the body written when a new document of kind k is created.
func DefaultContent(k Kind) string {
	switch k {
	case KindDrawing:
		return `{"strokes": [], "current_stroke": []}`
	case KindSpreadsheet:
		return `{"rows": 10, "columns": 5, "cells": {}}`
	default:
		return ""
	}
}
