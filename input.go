package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"mapmark/internal/catalog"
	"mapmark/internal/marker"
)

func (m *model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEscape:
		m.mode = m.returnMode
		return m, nil
	case msg.Type == tea.KeyEnter && m.mode == ModeEditName,
		msg.Type == tea.KeyCtrlS:
		text := m.input.String()
		editingName := m.mode == ModeEditName
		err := m.doc.UpdateMarker(m.selected, func(mk *marker.Marker) {
			if editingName {
				mk.Name = text
			} else {
				mk.Description = text
			}
		})
		if err != nil {
			m.errorMessage = err.Error()
		}
		m.mode = m.returnMode
		return m, nil
	}
	m.input.handleKey(msg)
	return m, nil
}

func (m *model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if isDirectionKey(key) {
		m.handleNavigation(key, m.getMoveSpeed(key))
		m.doc.MoveMarker(m.selected, m.cursorPoint())
		return m, nil
	}
	switch key {
	case "esc":
		m.doc.MoveMarker(m.selected, m.originalPos)
		m.doc.Dirty = m.wasDirty
		m.mode = m.returnMode
	case "enter":
		m.mode = m.returnMode
	case "z":
		m.zPanMode = !m.zPanMode
	}
	return m, nil
}

func (m *model) openIconPicker(mk marker.Marker) {
	m.pickerCategory = catalog.IndexOf(mk.Category)
	if m.pickerCategory < 0 {
		m.pickerCategory = 0
	}
	m.loadPickerIcons()
	m.pickerIndex = mk.IconIndex
	m.clampPickerIndex()
	m.mode = ModeIconPicker
}

func (m *model) loadPickerIcons() {
	m.pickerIcons = m.catalog.ListIcons(catalog.Names()[m.pickerCategory])
	m.clampPickerIndex()
}

func (m *model) clampPickerIndex() {
	if m.pickerIndex >= len(m.pickerIcons) {
		m.pickerIndex = len(m.pickerIcons) - 1
	}
	if m.pickerIndex < 0 {
		m.pickerIndex = 0
	}
}

func (m *model) cyclePickerCategory(step int) {
	n := len(catalog.Categories())
	m.pickerCategory = (m.pickerCategory + step + n) % n
	m.pickerIndex = 0
	m.loadPickerIcons()
}

func (m *model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = m.returnMode
	case "tab":
		m.cyclePickerCategory(1)
	case "shift+tab":
		m.cyclePickerCategory(-1)
	case "up", "k", "left", "h":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j", "right", "l":
		if m.pickerIndex < len(m.pickerIcons)-1 {
			m.pickerIndex++
		}
	case "enter":
		category := catalog.Names()[m.pickerCategory]
		if len(m.pickerIcons) == 0 {
			m.errorMessage = fmt.Sprintf("No icons in %s", category)
			return m, nil
		}
		index := m.pickerIndex
		m.doc.UpdateMarker(m.selected, func(mk *marker.Marker) {
			mk.Category = category
			mk.IconIndex = index
		})
		m.successMessage = fmt.Sprintf("Icon %s / %s", category, m.pickerIcons[index].Name)
		m.errorMessage = ""
		m.mode = m.returnMode
	}
	return m, nil
}

func (m *model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		if m.fromStartup && !m.doc.HasBackground() {
			m.mode = ModeStartup
		} else {
			m.mode = ModeNormal
		}
		m.fromStartup = false
		m.errorMessage = ""
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		if m.fileOp == FileOpOpen && len(m.fileList) > 0 {
			m.stepFileSelection(msg.Type == tea.KeyDown)
		}
		return m, nil
	case tea.KeyEnter:
		m.submitFileInput()
		return m, nil
	}

	before := m.input.String()
	m.input.handleKey(msg)
	if m.input.String() != before {
		m.selectedFileIndex = -1
	}
	return m, nil
}

func (m *model) stepFileSelection(down bool) {
	n := len(m.fileList)
	switch {
	case m.selectedFileIndex < 0 && down:
		m.selectedFileIndex = 0
	case m.selectedFileIndex < 0:
		m.selectedFileIndex = n - 1
	case down:
		m.selectedFileIndex = (m.selectedFileIndex + 1) % n
	default:
		m.selectedFileIndex = (m.selectedFileIndex - 1 + n) % n
	}
	m.input = newTextField(trimMapExt(m.fileList[m.selectedFileIndex]), false)
}

func (m *model) submitFileInput() {
	name := m.input.String()
	switch m.fileOp {
	case FileOpSave:
		m.saveAs(m.mapPath(name), false)
	case FileOpOpen:
		if name == "" && m.selectedFileIndex < 0 {
			m.errorMessage = "Please enter a filename"
			return
		}
		if m.openMap(m.mapPath(name)) {
			m.fromStartup = false
		}
	case FileOpNewMap:
		if name == "" {
			m.errorMessage = "Please enter the path of a map image"
			return
		}
		if m.newMap(name) {
			m.fromStartup = false
		}
	case FileOpExportPNG, FileOpExportTXT:
		if name == "" {
			m.errorMessage = "Please enter a filename"
			return
		}
		m.exportAs(m.exportPath(name), false)
	}
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmDeleteMarker:
			m.deleteSelected()
		case ConfirmNewMap:
			m.startNewMap()
		case ConfirmOpenMap:
			m.startOpen()
		case ConfirmOverwriteFile:
			if m.fileOp == FileOpSave {
				m.saveAs(m.pendingPath, true)
			} else {
				m.exportAs(m.pendingPath, true)
			}
		}
	case "n", "N", "esc":
		if m.confirmAction == ConfirmOverwriteFile {
			m.mode = ModeFileInput
		} else {
			m.mode = m.returnMode
		}
	}
	return m, nil
}
