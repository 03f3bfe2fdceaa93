// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package documents

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Spreadsheet size limits.
const (
	DefaultRows    = 10
	DefaultColumns = 5
	MinRows        = 5
	MinColumns     = 3
)

// Spreadsheet is the content of a .sheet document. Cells are keyed
// "row,col", both zero based. Empty cells are absent.
type Spreadsheet struct {
	Rows    int               `json:"rows"`
	Columns int               `json:"columns"`
	Cells   map[string]string `json:"cells"`
}

// NewSpreadsheet returns the default 10x5 empty sheet.
func NewSpreadsheet() *Spreadsheet {
	return &Spreadsheet{Rows: DefaultRows, Columns: DefaultColumns, Cells: map[string]string{}}
}

// ParseSpreadsheet decodes content, falling back to the default sheet when
// content is blank or invalid, and enforcing the minimum size.
func ParseSpreadsheet(content string) *Spreadsheet {
	s := NewSpreadsheet()
	if strings.TrimSpace(content) != "" {
		if err := json.Unmarshal([]byte(content), s); err != nil {
			s = NewSpreadsheet()
		}
	}
	if s.Cells == nil {
		s.Cells = map[string]string{}
	}
	s.Rows = max(s.Rows, MinRows)
	s.Columns = max(s.Columns, MinColumns)
	return s
}

// CellKey returns the cells map key for row and col.
func CellKey(row, col int) string {
	return strconv.Itoa(row) + "," + strconv.Itoa(col)
}

// ColumnLabel returns the header for a zero-based column: A..Z, AA, AB, ...
func ColumnLabel(col int) string {
	if col < 0 {
		return ""
	}
	label := ""
	for n := col; ; n = n/26 - 1 {
		label = string(rune('A'+n%26)) + label
		if n < 26 {
			break
		}
	}
	return label
}

// ParseCellRef reads a reference like "B3" into zero-based row and column.
func ParseCellRef(ref string) (row, col int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return n - 1, col - 1, nil
}

// Get returns the value at row, col or "".
func (s *Spreadsheet) Get(row, col int) string {
	return s.Cells[CellKey(row, col)]
}

// Set stores value at row, col, growing the sheet to fit. An empty value
// clears the cell.
func (s *Spreadsheet) Set(row, col int, value string) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("cell %d,%d is out of range", row, col)
	}
	if value == "" {
		delete(s.Cells, CellKey(row, col))
		return nil
	}
	s.Cells[CellKey(row, col)] = value
	s.Rows = max(s.Rows, row+1)
	s.Columns = max(s.Columns, col+1)
	return nil
}

// AddRow appends an empty row.
func (s *Spreadsheet) AddRow() { s.Rows++ }

// AddColumn appends an empty column.
func (s *Spreadsheet) AddColumn() { s.Columns++ }

// Marshal encodes the sheet.
func (s *Spreadsheet) Marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode spreadsheet: %w", err)
	}
	return string(data), nil
}
