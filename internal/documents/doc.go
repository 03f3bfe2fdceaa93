// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package documents understands the three document kinds docvault stores.
//
//   - .txt   plain text, stored verbatim
//   - .draw  a drawing: {"strokes": [[point...]...], "current_stroke": [...]}
//   - .sheet a spreadsheet: {"rows": n, "columns": m, "cells": {"row,col": value}}
//
// Parsers are forgiving. Blank or unparsable drawings and spreadsheets fall
// back to the empty default so an editor can always open them.
package documents
