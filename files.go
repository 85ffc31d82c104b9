package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mapmark/internal/document"
)

// scanMapFiles lists the map files in the save directory, sorted by name.
func (m *model) scanMapFiles() {
	m.fileList = []string{}
	m.selectedFileIndex = -1

	entries, err := os.ReadDir(m.config.SaveDir())
	if err != nil {
		m.log.Warn().Err(err).Str("dir", m.config.SaveDir()).Msg("cannot list maps")
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), document.Extension) {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)

	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.input = newTextField(trimMapExt(m.fileList[0]), false)
	}
}

func trimMapExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), document.Extension) {
		return name[:len(name)-len(document.Extension)]
	}
	return name
}

// withExt appends ext unless name already ends with it.
func withExt(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

// mapPath turns the text typed in the save or open prompt into a file path.
func (m *model) mapPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = document.DefaultFileName(time.Now())
	}
	if strings.HasPrefix(name, "~") {
		name = expandPath(name, homeDir())
	}
	return m.config.GetSavePath(withExt(name, document.Extension))
}

// baseName is the current map file name without directory and extension,
// used to suggest export names.
func (m *model) baseName() string {
	if m.filename == "" {
		return "map"
	}
	return trimMapExt(filepath.Base(m.filename))
}

func (m *model) startSave() {
	m.mode = ModeFileInput
	m.fileOp = FileOpSave
	name := ""
	if m.filename != "" {
		name = trimMapExt(filepath.Base(m.filename))
	}
	m.input = newTextField(name, false)
	m.clearMessages()
}

func (m *model) startOpen() {
	m.mode = ModeFileInput
	m.fileOp = FileOpOpen
	m.input = newTextField("", false)
	m.clearMessages()
	m.scanMapFiles()
}

func (m *model) startNewMap() {
	m.mode = ModeFileInput
	m.fileOp = FileOpNewMap
	m.input = newTextField("", false)
	m.clearMessages()
}

// saveAs writes the document, asking first when path exists and
// confirmations are enabled.
func (m *model) saveAs(path string, confirmed bool) {
	if !confirmed && m.config.Confirmations {
		if _, err := os.Stat(path); err == nil {
			m.pendingPath = path
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return
		}
	}
	if err := m.store.Save(m.doc, path); err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("save failed")
		m.errorMessage = fmt.Sprintf("Error saving file: %s", err.Error())
		m.mode = ModeFileInput
		m.fileOp = FileOpSave
		return
	}
	m.filename = path
	absPath, _ := filepath.Abs(path)
	m.successMessage = fmt.Sprintf("Saved to %s", absPath)
	m.errorMessage = ""
	m.mode = ModeNormal
}

// openMap replaces the document with the map at path. The current document
// is kept when loading fails.
func (m *model) openMap(path string) bool {
	doc, warnings, err := m.store.Load(path)
	if err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("open failed")
		m.errorMessage = fmt.Sprintf("Error opening file: %s", loadErrorText(err))
		return false
	}
	m.setDocument(doc, path)
	m.errorMessage = ""
	m.successMessage = fmt.Sprintf("Opened %s", filepath.Base(path))
	if len(warnings) > 0 {
		m.successMessage += fmt.Sprintf(" (%d marker(s) reset to the default icon)", len(warnings))
	}
	return true
}

func loadErrorText(err error) string {
	switch {
	case errors.Is(err, document.ErrMissingAsset):
		return "map image is missing"
	case errors.Is(err, document.ErrUnsupportedVersion):
		return "file was written by a newer version"
	case errors.Is(err, document.ErrCorrupt):
		return "file is corrupt"
	case errors.Is(err, document.ErrDecodeImage):
		return "map image cannot be decoded"
	}
	return err.Error()
}

// newMap starts a fresh document on the image at path.
func (m *model) newMap(path string) bool {
	path = expandPath(path, homeDir())
	doc := document.New()
	if err := doc.AttachBackground(path); err != nil {
		m.log.Error().Err(err).Str("image", path).Msg("new map failed")
		m.errorMessage = fmt.Sprintf("Error loading image: %s", loadErrorText(err))
		return false
	}
	m.setDocument(doc, "")
	m.log.Info().Str("image", path).Msg("new map")
	m.errorMessage = ""
	m.successMessage = fmt.Sprintf("New map on %s", filepath.Base(path))
	return true
}

func (m *model) setDocument(doc *document.Document, filename string) {
	m.doc = doc
	m.filename = filename
	m.selected = -1
	m.mode = ModeNormal
	m.zPanMode = false
	m.resetView()
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return dir
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}
