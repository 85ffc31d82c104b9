package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"mapmark/internal/catalog"
	"mapmark/internal/document"
	"mapmark/internal/logging"
	"mapmark/internal/marker"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "mapmark: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	config := loadConfig()

	logger, closer, err := logging.Setup(config.LogPath(), config.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	if config.readErr != nil {
		logger.Warn().Err(config.readErr).Msg("config file ignored")
	}

	cat := catalog.New(config.MarkersDir, logger)
	m := initialModel(config, cat, logger)

	watcher, err := cat.Watch()
	if err != nil {
		logger.Warn().Err(err).Str("dir", cat.Root()).Msg("icon folders are not watched")
	} else {
		m.watcher = watcher
		defer watcher.Close()
	}

	// A map file or an image can be given on the command line.
	if len(args) > 0 {
		path := expandPath(args[0], homeDir())
		if strings.EqualFold(filepath.Ext(path), document.Extension) {
			m.openMap(path)
		} else {
			m.newMap(path)
		}
	}

	logger.Info().Str("markers", cat.Root()).Str("save_dir", config.SaveDir()).Msg("starting")
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("program failed")
		return err
	}
	return nil
}

func initialModel(config *Config, cat *catalog.Catalog, log zerolog.Logger) *model {
	m := &model{
		doc:        document.New(),
		mode:       ModeStartup,
		selected:   -1,
		markerSize: config.MarkerSize,
		config:     config,
		catalog:    cat,
		store:      document.NewStore(cat, log),
		log:        log,
	}
	if !config.StartMenu {
		m.mode = ModeNormal
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return waitForIconChange(m.watcher)
}

// waitForIconChange blocks until the watcher reports a category folder
// change. It is re-issued after every event.
func waitForIconChange(w *catalog.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case category, ok := <-w.Events:
			if !ok {
				return nil
			}
			return iconsChangedMsg{category: category}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := m.width == 0 && m.height == 0
		m.width = msg.Width
		m.height = msg.Height
		if first {
			m.resetView()
		}
		m.ensureCursorInBounds()
		return m, nil

	case iconsChangedMsg:
		m.log.Debug().Str("category", msg.category).Msg("icon folder changed")
		if m.mode == ModeIconPicker && catalog.Names()[m.pickerCategory] == msg.category {
			m.loadPickerIcons()
		}
		return m, waitForIconChange(m.watcher)

	case watchErrMsg:
		m.log.Warn().Err(msg.err).Msg("icon watcher")
		return m, waitForIconChange(m.watcher)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help && m.mode != ModeStartup {
			return m.handleHelpKey(msg)
		}

		switch m.mode {
		case ModeStartup:
			return m.handleStartupKey(msg)
		case ModeNormal:
			return m.handleNormalKey(msg)
		case ModeInfo:
			return m.handleInfoKey(msg)
		case ModeEditName, ModeEditDescription:
			return m.handleEditKey(msg)
		case ModeMove:
			return m.handleMoveKey(msg)
		case ModeIconPicker:
			return m.handlePickerKey(msg)
		case ModeFileInput:
			return m.handleFileInputKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		}
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal && m.mode != ModeInfo {
		return m, nil
	}
	cols, rows := m.mapSize()
	if msg.X < 0 || msg.X >= cols || msg.Y < 0 || msg.Y >= rows {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseLeft:
		m.cursorX, m.cursorY = msg.X, msg.Y
		if idx := m.markerUnderCursor(); idx != -1 {
			m.selected = idx
			m.mode = ModeInfo
		} else if m.mode == ModeInfo {
			m.mode = ModeNormal
		}
	case tea.MouseWheelUp:
		m.cursorX, m.cursorY = msg.X, msg.Y
		m.zoom(zoomIn)
	case tea.MouseWheelDown:
		m.cursorX, m.cursorY = msg.X, msg.Y
		m.zoom(zoomOut)
	}
	return m, nil
}

func (m *model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		maxScroll := len(helpLines) - (m.height - 1)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

func (m *model) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.fromStartup = true
		m.startNewMap()
	case "o":
		m.fromStartup = true
		m.startOpen()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if isDirectionKey(key) {
		return m.handleNavigation(key, m.getMoveSpeed(key))
	}

	switch key {
	case "esc":
		m.zPanMode = false
		m.selected = -1
		m.clearMessages()
	case "ctrl+c", "q":
		if !m.config.Confirmations {
			return m, tea.Quit
		}
		m.confirm(ConfirmQuit)
	case "?":
		m.help = true
	case "z":
		m.zPanMode = !m.zPanMode
	case "r":
		m.resetView()
	case "+", "=":
		m.zoom(zoomIn)
	case "-", "_":
		m.zoom(zoomOut)
	case "[":
		m.markerSize = marker.ClampSize(m.markerSize - markerSizeStep)
		m.successMessage = fmt.Sprintf("Marker size %d", m.markerSize)
	case "]":
		m.markerSize = marker.ClampSize(m.markerSize + markerSizeStep)
		m.successMessage = fmt.Sprintf("Marker size %d", m.markerSize)
	case "a", " ":
		m.placeMarker()
	case "enter":
		if idx := m.markerUnderCursor(); idx != -1 {
			m.selected = idx
			m.mode = ModeInfo
		}
	case "s":
		if m.requireMap("save") {
			m.startSave()
		}
	case "o":
		m.fromStartup = false
		if m.unsavedChanges() {
			m.confirm(ConfirmOpenMap)
		} else {
			m.startOpen()
		}
	case "n":
		m.fromStartup = false
		if m.unsavedChanges() {
			m.confirm(ConfirmNewMap)
		} else {
			m.startNewMap()
		}
	case "p":
		if m.requireMap("export") {
			m.startExport(FileOpExportPNG)
		}
	case "t":
		if m.requireMap("export") {
			m.startExport(FileOpExportTXT)
		}
	default:
		if idx := m.markerUnderCursor(); idx != -1 {
			m.returnMode = ModeNormal
			m.markerKey(key, idx)
		}
	}
	return m, nil
}

func (m *model) handleInfoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "enter", "q":
		m.mode = ModeNormal
		return m, nil
	case "e":
		key = "D"
	case "?":
		m.help = true
		return m, nil
	}
	if m.selected < 0 || m.selected >= len(m.doc.Markers) {
		m.mode = ModeNormal
		return m, nil
	}
	m.returnMode = ModeInfo
	m.markerKey(key, m.selected)
	return m, nil
}

// markerKey runs a command that acts on marker idx.
func (m *model) markerKey(key string, idx int) {
	mk := m.doc.Markers[idx]
	switch key {
	case "m":
		m.selected = idx
		m.originalPos = mk.Position
		m.wasDirty = m.doc.Dirty
		m.focusMarker(idx)
		m.mode = ModeMove
	case "d":
		m.selected = idx
		if m.config.Confirmations {
			m.confirm(ConfirmDeleteMarker)
			return
		}
		m.deleteSelected()
	case "i":
		m.selected = idx
		m.input = newTextField(mk.Name, false)
		m.mode = ModeEditName
	case "D":
		m.selected = idx
		m.input = newTextField(mk.Description, true)
		m.mode = ModeEditDescription
	case "v":
		m.doc.UpdateMarker(idx, func(mk *marker.Marker) {
			mk.NameVisible = !mk.NameVisible
		})
	case "c":
		m.selected = idx
		m.openIconPicker(mk)
	case "f":
		if top, err := m.doc.RaiseMarker(idx); err == nil {
			m.selected = top
		}
	case "y":
		if err := writeClipboardText(mk.Description); err != nil {
			m.errorMessage = fmt.Sprintf("Clipboard: %s", err.Error())
			return
		}
		m.successMessage = "Description copied"
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '0')
		if c, ok := marker.PaletteColor(i); ok {
			m.doc.UpdateMarker(idx, func(mk *marker.Marker) {
				mk.TextColor = c
			})
			m.successMessage = fmt.Sprintf("Label color %s", marker.Palette[i].Name)
		}
	}
}

func (m *model) placeMarker() {
	if !m.doc.HasBackground() {
		m.errorMessage = "No map loaded: press n for a new map or o to open one"
		return
	}
	idx, err := m.doc.AddMarker(m.cursorPoint())
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.selected = idx
	m.clearMessages()
}

func (m *model) deleteSelected() {
	if err := m.doc.RemoveMarker(m.selected); err != nil {
		m.errorMessage = err.Error()
	}
	m.selected = -1
	m.mode = ModeNormal
}

func (m *model) requireMap(action string) bool {
	if m.doc.HasBackground() {
		return true
	}
	m.errorMessage = fmt.Sprintf("Nothing to %s: no map loaded", action)
	return false
}

func (m *model) unsavedChanges() bool {
	return m.config.Confirmations && m.doc.Dirty && len(m.doc.Markers) > 0
}

func (m *model) confirm(action ConfirmAction) {
	m.returnMode = m.mode
	m.confirmAction = action
	m.mode = ModeConfirm
}
