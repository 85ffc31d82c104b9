package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"mapmark/internal/marker"
)

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.zPanMode {
		return m.handlePan(key, speed), nil
	}
	return m.handleCursorMove(key, speed), nil
}

func (m *model) handlePan(key string, speed int) tea.Model {
	dx, dy := direction(key)
	m.view = m.view.Pan(dx*speed, dy*speed)
	return m
}

func (m *model) handleCursorMove(key string, speed int) tea.Model {
	dx, dy := direction(key)
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
	return m
}

func direction(key string) (int, int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func isDirectionKey(key string) bool {
	dx, dy := direction(key)
	return dx != 0 || dy != 0
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// mapSize is the number of cells available to the map, leaving room for the
// status line and, when open, the side panel.
func (m *model) mapSize() (int, int) {
	cols := m.width
	if m.panelOpen() {
		cols -= panelWidth
	}
	rows := m.height - 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m *model) ensureCursorInBounds() {
	cols, rows := m.mapSize()
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if m.cursorX >= cols {
		m.cursorX = cols - 1
	}
	if m.cursorY >= rows {
		m.cursorY = rows - 1
	}
}

// resetView fits the map into the terminal, like reopening it.
func (m *model) resetView() {
	if m.doc == nil || !m.doc.HasBackground() {
		return
	}
	cols, rows := m.mapSize()
	m.view = fitViewport(m.doc.Bounds(), cols, rows)
	m.ensureCursorInBounds()
}

func (m *model) zoom(factor float64) {
	if m.doc == nil || !m.doc.HasBackground() {
		return
	}
	m.view = m.view.Zoom(factor, m.cursorX, m.cursorY)
}

// cursorPoint is the image coordinate under the cursor.
func (m *model) cursorPoint() marker.Point {
	return m.view.CellToImage(m.cursorX, m.cursorY)
}

// markerUnderCursor returns the top-most marker drawn in the cursor cell.
func (m *model) markerUnderCursor() int {
	if m.doc == nil {
		return -1
	}
	for i := len(m.doc.Markers) - 1; i >= 0; i-- {
		cx, cy := m.view.ImageToCell(m.doc.Markers[i].Position)
		if cx == m.cursorX && cy == m.cursorY {
			return i
		}
	}
	return -1
}

// focusMarker moves the cursor onto marker i, panning if it is off screen.
func (m *model) focusMarker(i int) {
	if m.doc == nil || i < 0 || i >= len(m.doc.Markers) {
		return
	}
	cols, rows := m.mapSize()
	cx, cy := m.view.ImageToCell(m.doc.Markers[i].Position)
	if cx < 0 || cx >= cols || cy < 0 || cy >= rows {
		m.view = m.view.Pan(cx-cols/2, cy-rows/2)
		cx, cy = m.view.ImageToCell(m.doc.Markers[i].Position)
	}
	m.cursorX, m.cursorY = cx, cy
	m.ensureCursorInBounds()
}
