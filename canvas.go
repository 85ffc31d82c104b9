package main

import (
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mapmark/internal/marker"
	"mapmark/internal/render"
)

const (
	minScale = 0.05
	maxScale = 1e4
)

// Viewport maps terminal cells onto background image coordinates.
type Viewport struct {
	// Scale is the number of image pixels covered by one cell column.
	Scale float64
	// PanX, PanY is the image coordinate at the top-left corner of the map area.
	PanX, PanY float64
}

func (v Viewport) cellHeight() float64 {
	return v.Scale * cellAspect
}

// CellToImage returns the image coordinate at the center of cell (cx, cy).
func (v Viewport) CellToImage(cx, cy int) marker.Point {
	return marker.Point{
		X: v.PanX + (float64(cx)+0.5)*v.Scale,
		Y: v.PanY + (float64(cy)+0.5)*v.cellHeight(),
	}
}

// ImageToCell returns the cell containing image coordinate p.
func (v Viewport) ImageToCell(p marker.Point) (int, int) {
	return int(math.Floor((p.X - v.PanX) / v.Scale)),
		int(math.Floor((p.Y - v.PanY) / v.cellHeight()))
}

// fitViewport frames the whole image inside cols x rows cells.
func fitViewport(bounds image.Rectangle, cols, rows int) Viewport {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	scale := math.Max(
		float64(bounds.Dx())/float64(cols),
		float64(bounds.Dy())/(float64(rows)*cellAspect),
	)
	if scale <= 0 {
		scale = 1
	}
	return Viewport{
		Scale: clampScale(scale),
		PanX:  float64(bounds.Min.X),
		PanY:  float64(bounds.Min.Y),
	}
}

func clampScale(s float64) float64 {
	return math.Max(minScale, math.Min(maxScale, s))
}

// Zoom magnifies by factor while keeping the image point under cell
// (cx, cy) in place.
func (v Viewport) Zoom(factor float64, cx, cy int) Viewport {
	anchor := v.CellToImage(cx, cy)
	v.Scale = clampScale(v.Scale / factor)
	v.PanX = anchor.X - (float64(cx)+0.5)*v.Scale
	v.PanY = anchor.Y - (float64(cy)+0.5)*v.cellHeight()
	return v
}

func (v Viewport) Pan(dx, dy int) Viewport {
	v.PanX += float64(dx) * v.Scale
	v.PanY += float64(dy) * v.cellHeight()
	return v
}

// sourceRect is the image area shown in a cols x rows map area.
func (v Viewport) sourceRect(cols, rows int) image.Rectangle {
	return image.Rect(
		int(math.Floor(v.PanX)),
		int(math.Floor(v.PanY)),
		int(math.Ceil(v.PanX+float64(cols)*v.Scale)),
		int(math.Ceil(v.PanY+float64(rows)*v.cellHeight())),
	)
}

type cell struct {
	ch      rune
	fg      string
	bold    bool
	reverse bool
}

func shadeRune(l float64) rune {
	if l < 0 {
		return ' '
	}
	i := int(l*float64(len(shadeRamp)-1) + 0.5)
	if i >= len(shadeRamp) {
		i = len(shadeRamp) - 1
	}
	return rune(shadeRamp[i])
}

// renderMap draws the background and markers into cols x rows cells.
func (m *model) renderMap(cols, rows int, showCursor bool) []string {
	grid := make([][]cell, rows)
	var lum [][]float64
	if m.doc != nil && m.doc.HasBackground() {
		lum = render.Luminance(m.doc.Background, m.view.sourceRect(cols, rows), cols, rows)
	}
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			l := -1.0
			if lum != nil {
				l = lum[y][x]
			}
			grid[y][x] = cell{ch: shadeRune(l)}
		}
	}

	if m.doc != nil {
		for i, mk := range m.doc.Markers {
			cx, cy := m.view.ImageToCell(mk.Position)
			if cy < 0 || cy >= rows {
				continue
			}
			if cx >= 0 && cx < cols {
				grid[cy][cx] = cell{ch: markerGlyph, bold: true, reverse: i == m.selected && m.mode != ModeNormal}
			}
			label := []rune(mk.Label())
			if len(label) == 0 || cy+1 >= rows {
				continue
			}
			start := cx - len(label)/2
			for j, r := range label {
				x := start + j
				if x < 0 || x >= cols {
					continue
				}
				grid[cy+1][x] = cell{ch: r, fg: mk.TextColor.Hex()}
			}
		}
	}

	if showCursor && m.cursorY >= 0 && m.cursorY < rows && m.cursorX >= 0 && m.cursorX < cols {
		c := &grid[m.cursorY][m.cursorX]
		if c.ch == ' ' {
			c.ch = '█'
		} else {
			c.reverse = !c.reverse
		}
	}

	lines := make([]string, rows)
	for y, row := range grid {
		lines[y] = styleRow(row)
	}
	return lines
}

// styleRow renders a row, styling runs of cells that share attributes.
func styleRow(row []cell) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && sameStyle(row[i], row[start]) {
			continue
		}
		run := make([]rune, 0, i-start)
		for _, c := range row[start:i] {
			run = append(run, c.ch)
		}
		b.WriteString(styleCell(row[start]).Render(string(run)))
		start = i
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bold == b.bold && a.reverse == b.reverse
}

func styleCell(c cell) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c.fg != "" {
		style = style.Foreground(lipgloss.Color(c.fg))
	}
	if c.bold {
		style = style.Bold(true)
	}
	if c.reverse {
		style = style.Reverse(true)
	}
	return style
}
