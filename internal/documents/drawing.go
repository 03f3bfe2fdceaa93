// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package documents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Drawing tools and defaults.
const (
	ToolPencil = "pencil"
	ToolEraser = "eraser"

	DefaultColor = "#000000"
	EraserColor  = "#FFFFFF"
	DefaultSize  = 2
)

// Point is one sampled pen position.
type Point struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
	Size  int    `json:"size"`
	Tool  string `json:"tool"`
}

// Drawing is the content of a .draw document.
type Drawing struct {
	Strokes       [][]Point `json:"strokes"`
	CurrentStroke []Point   `json:"current_stroke"`
}

// NewDrawing returns an empty drawing.
func NewDrawing() *Drawing {
	return &Drawing{Strokes: [][]Point{}, CurrentStroke: []Point{}}
}

// ParseDrawing decodes content, returning an empty drawing when content is
// blank or not valid drawing JSON.
func ParseDrawing(content string) *Drawing {
	d := NewDrawing()
	if strings.TrimSpace(content) == "" {
		return d
	}
	if err := json.Unmarshal([]byte(content), d); err != nil {
		return NewDrawing()
	}
	if d.Strokes == nil {
		d.Strokes = [][]Point{}
	}
	if d.CurrentStroke == nil {
		d.CurrentStroke = []Point{}
	}
	return d
}

// AddStroke appends a finished stroke. Strokes shorter than two points are
// dropped and AddStroke reports false.
func (d *Drawing) AddStroke(points []Point) bool {
	if len(points) < 2 {
		return false
	}
	stroke := make([]Point, len(points))
	copy(stroke, points)
	d.Strokes = append(d.Strokes, stroke)
	d.CurrentStroke = []Point{}
	return true
}

// Clear removes every stroke.
func (d *Drawing) Clear() {
	d.Strokes = [][]Point{}
	d.CurrentStroke = []Point{}
}

// PointCount is the total number of points across strokes.
func (d *Drawing) PointCount() int {
	n := 0
	for _, s := range d.Strokes {
		n += len(s)
	}
	return n
}

// Marshal encodes the drawing.
func (d *Drawing) Marshal() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode drawing: %w", err)
	}
	return string(data), nil
}

// NewPoint builds a point for tool. The eraser always paints white.
func NewPoint(x, y int, tool, color string, size int) Point {
	if tool == "" {
		tool = ToolPencil
	}
	if color == "" {
		color = DefaultColor
	}
	if tool == ToolEraser {
		color = EraserColor
	}
	if size <= 0 {
		size = DefaultSize
	}
	return Point{X: x, Y: y, Color: color, Size: size, Tool: tool}
}
