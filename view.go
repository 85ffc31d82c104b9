package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mapmark/internal/catalog"
	"mapmark/internal/marker"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pickStyle    = lipgloss.NewStyle().Reverse(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(1)
)

var helpLines = []string{
	"mapmark help",
	"============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move the cursor (pan in pan mode)",
	"  Shift+h/j/k/l    Move 2x faster",
	"  z                Toggle pan mode",
	"  +/-              Zoom in/out around the cursor (mouse wheel too)",
	"  r                Fit the map into the window",
	"",
	"Markers:",
	"--------",
	"  a/Space          Place a marker at the cursor",
	"  Enter            Show the marker under the cursor (e edits the description)",
	"  m                Move the marker (Enter keeps, Esc cancels)",
	"  d                Delete the marker",
	"  i                Edit the name",
	"  D                Edit the description (Ctrl+S saves)",
	"  v                Show/hide the name on the map",
	"  0-9              Pick the label color",
	"  c                Choose the icon (Tab switches category)",
	"  f                Bring to front",
	"  y                Copy the description to the clipboard",
	"  [/]              Smaller/larger icons in PNG export",
	"  Ctrl+V           Paste into any text field",
	"",
	"Files:",
	"------",
	"  s                Save the map",
	"  o                Open a saved map",
	"  n                New map from an image",
	"  p                Export as PNG",
	"  t                Export a text listing of the markers",
	"",
	"General:",
	"  Esc              Clear selection/cancel",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.help && m.mode != ModeStartup {
		return m.helpView()
	}
	if m.mode == ModeStartup {
		return m.startupView()
	}
	if m.mode == ModeFileInput && m.fileOp == FileOpOpen {
		return m.fileListView() + "\n" + m.statusLine()
	}

	cols, rows := m.mapSize()
	showCursor := m.mode != ModeFileInput && m.mode != ModeConfirm
	body := strings.Join(m.renderMap(cols, rows, showCursor), "\n")
	if m.panelOpen() {
		panel := panelStyle.Width(panelWidth - 1).Height(rows).MaxHeight(rows).Render(m.panelView())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}
	return body + "\n" + m.statusLine()
}

func (m *model) panelOpen() bool {
	switch m.mode {
	case ModeInfo, ModeEditName, ModeEditDescription, ModeIconPicker:
		return m.selected >= 0 && m.doc != nil && m.selected < len(m.doc.Markers)
	}
	return false
}

func (m *model) startupView() string {
	lines := []string{
		titleStyle.Render("mapmark"),
		"",
		"  n  New map from an image",
		"  o  Open a saved map",
		"  q  Quit",
	}
	if m.errorMessage != "" {
		lines = append(lines, "", errorStyle.Render(m.errorMessage))
	}
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) panelView() string {
	mk := m.doc.Markers[m.selected]
	if m.mode == ModeIconPicker {
		return m.pickerView()
	}

	var b strings.Builder
	name := mk.Name
	if m.mode == ModeEditName {
		name = m.input.display(false)
	} else if name == "" {
		name = dimStyle.Render("(unnamed)")
	}
	b.WriteString(titleStyle.Render(name) + "\n")

	res := m.catalog.Resolve(mk.Category, mk.IconIndex)
	icon := res.Icon.Name
	if icon == "" {
		icon = "none"
	}
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(mk.Position.String()))
	fmt.Fprintf(&b, "Icon:  %s / %s\n", res.Category, icon)
	color := lipgloss.NewStyle().Foreground(lipgloss.Color(mk.TextColor.Hex())).Render(marker.SwatchName(mk.TextColor))
	fmt.Fprintf(&b, "Color: %s\n", color)
	visible := "shown"
	if !mk.NameVisible {
		visible = "hidden"
	}
	fmt.Fprintf(&b, "Label: %s\n\n", visible)

	desc := mk.Description
	if m.mode == ModeEditDescription {
		desc = m.input.display(true)
	} else if desc == "" {
		desc = dimStyle.Render("(no description)")
	}
	b.WriteString(desc)
	return b.String()
}

func (m *model) pickerView() string {
	var b strings.Builder
	names := catalog.Names()
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(names[m.pickerCategory]), dimStyle.Render(fmt.Sprintf("%d/%d", m.pickerCategory+1, len(names))))
	b.WriteString(dimStyle.Render("tab: next category") + "\n\n")
	if len(m.pickerIcons) == 0 {
		b.WriteString(dimStyle.Render("(no icons)"))
		return b.String()
	}

	_, rows := m.mapSize()
	visible := rows - 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.pickerIndex >= visible {
		start = m.pickerIndex - visible + 1
	}
	end := start + visible
	if end > len(m.pickerIcons) {
		end = len(m.pickerIcons)
	}
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%2d %s", i, m.pickerIcons[i].Name)
		if i == m.pickerIndex {
			line = pickStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) fileListView() string {
	_, rows := m.mapSize()
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Select a saved map in %s:\n", m.config.SaveDir()))
	result.WriteString(strings.Repeat("─", m.width) + "\n")

	if len(m.fileList) == 0 {
		result.WriteString(dimStyle.Render("(No map files found)") + "\n")
	} else {
		maxFiles := rows - 4
		if maxFiles < 1 {
			maxFiles = 1
		}
		startIdx := 0
		if m.selectedFileIndex >= maxFiles {
			startIdx = m.selectedFileIndex - maxFiles + 1
		}
		endIdx := startIdx + maxFiles
		if endIdx > len(m.fileList) {
			endIdx = len(m.fileList)
		}
		for i := startIdx; i < endIdx; i++ {
			name := trimMapExt(m.fileList[i])
			if i == m.selectedFileIndex {
				result.WriteString("> " + pickStyle.Render(name) + "\n")
			} else {
				result.WriteString("  " + name + "\n")
			}
		}
	}

	result.WriteString(strings.Repeat("─", m.width) + "\n")
	result.WriteString("Filename: " + m.input.display(false))
	return result.String()
}

func (m *model) statusLine() string {
	var status string
	switch m.mode {
	case ModeEditName:
		status = "Mode: NAME | Enter=save, Ctrl+V=paste, Esc=cancel"
	case ModeEditDescription:
		status = "Mode: DESCRIPTION | Enter=newline, Ctrl+S=save, Ctrl+V=paste, Esc=cancel"
	case ModeMove:
		status = fmt.Sprintf("Mode: MOVE | %s | hjkl/arrows=move, Enter=finish, Esc=cancel", m.cursorPoint())
	case ModeIconPicker:
		status = "Mode: ICON | Tab=category, ↑/↓=icon, Enter=choose, Esc=cancel"
	case ModeFileInput:
		status = m.fileStatus()
	case ModeConfirm:
		status = "Mode: CONFIRM | " + m.confirmMessage()
	default:
		modeStr := m.modeString()
		if m.zPanMode {
			modeStr = "PAN"
		}
		status = fmt.Sprintf("Mode: %s", modeStr)
		if m.doc.HasBackground() {
			status += fmt.Sprintf(" | %s | zoom %.0f%%", m.cursorPoint(), 100/m.view.Scale)
			if m.doc.Dirty {
				status += " | modified"
			}
		}
		if m.errorMessage == "" && m.successMessage == "" {
			status += " | ? for help | q to quit"
		}
	}
	if m.successMessage != "" && m.mode != ModeFileInput {
		status += " | " + successStyle.Render(m.successMessage)
	}
	if m.errorMessage != "" && m.mode != ModeFileInput {
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(status)
}

func (m *model) fileStatus() string {
	var opStr string
	switch m.fileOp {
	case FileOpSave:
		opStr = "Save map as"
	case FileOpOpen:
		opStr = "Open map"
	case FileOpNewMap:
		opStr = "Map image"
	case FileOpExportPNG:
		opStr = "Export PNG as"
	case FileOpExportTXT:
		opStr = "Export listing as"
	}
	status := fmt.Sprintf("Mode: FILE | %s: %s", opStr, m.input.display(false))
	if m.errorMessage != "" {
		return status + " | " + errorStyle.Render("ERROR: "+m.errorMessage) + " | Enter=retry, Esc=cancel"
	}
	if m.fileOp == FileOpSave && m.input.String() == "" {
		status += dimStyle.Render(" (empty: timestamp name)")
	}
	if m.fileOp == FileOpOpen {
		return status + " | ↑/↓=navigate, Enter=open, Esc=cancel"
	}
	return status + " | Enter=confirm, Esc=cancel"
}

func (m *model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteMarker:
		name := ""
		if m.selected >= 0 && m.selected < len(m.doc.Markers) {
			name = m.doc.Markers[m.selected].Name
		}
		if name != "" {
			return fmt.Sprintf("Delete marker %q? (y/n)", name)
		}
		return "Delete this marker? (y/n)"
	case ConfirmQuit:
		if m.doc.Dirty {
			return "Quit mapmark? Unsaved changes will be lost. (y/n)"
		}
		return "Quit mapmark? (y/n)"
	case ConfirmNewMap:
		return "Start a new map? Unsaved changes will be lost. (y/n)"
	case ConfirmOpenMap:
		return "Open another map? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	}
	return ""
}

func (m *model) modeString() string {
	switch m.mode {
	case ModeStartup:
		return "STARTUP"
	case ModeNormal:
		return "NORMAL"
	case ModeInfo:
		return "INFO"
	case ModeEditName:
		return "NAME"
	case ModeEditDescription:
		return "DESCRIPTION"
	case ModeMove:
		return "MOVE"
	case ModeIconPicker:
		return "ICON"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m *model) helpView() string {
	visibleHeight := m.height - 1
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	startLine := m.helpScroll
	if startLine > len(helpLines)-visibleHeight {
		startLine = len(helpLines) - visibleHeight
	}
	if startLine < 0 {
		startLine = 0
	}
	endLine := startLine + visibleHeight
	if endLine > len(helpLines) {
		endLine = len(helpLines)
	}

	result := strings.Join(helpLines[startLine:endLine], "\n")
	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result + "\n" + statusLine
}
