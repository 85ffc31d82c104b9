package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mapmark/internal/catalog"
	"mapmark/internal/document"
	"mapmark/internal/marker"
	"mapmark/internal/render"
)

func (m *model) startExport(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	name := m.baseName() + "-export"
	m.input = newTextField(name, false)
	m.clearMessages()
}

// exportPath turns the text typed in the export prompt into a file path.
func (m *model) exportPath(name string) string {
	ext := ".png"
	if m.fileOp == FileOpExportTXT {
		ext = ".txt"
	}
	return m.config.GetSavePath(withExt(strings.TrimSpace(name), ext))
}

// exportAs writes the export for the current file operation to path. It
// refuses to replace the background image of a saved map and asks first
// when any other file exists there and confirmations are enabled.
func (m *model) exportAs(path string, confirmed bool) {
	if owner := m.backgroundOwner(path); owner != "" {
		m.errorMessage = fmt.Sprintf("%s is the map image of %s; choose another name", filepath.Base(path), filepath.Base(owner))
		m.mode = ModeFileInput
		return
	}
	if !confirmed && m.config.Confirmations {
		if _, err := os.Stat(path); err == nil {
			m.pendingPath = path
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return
		}
	}

	var err error
	if m.fileOp == FileOpExportTXT {
		err = m.exportTXT(path)
	} else {
		err = m.exportPNG(path)
	}
	if err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("export failed")
		m.errorMessage = fmt.Sprintf("Error exporting: %s", err.Error())
		m.mode = ModeFileInput
		return
	}
	absPath, _ := filepath.Abs(path)
	m.successMessage = fmt.Sprintf("Exported to %s", absPath)
	m.errorMessage = ""
	m.mode = ModeNormal
}

// backgroundOwner returns the map file whose saved background image is path,
// looking at the open map and every map in the save directory.
func (m *model) backgroundOwner(path string) string {
	target := cleanAbs(path)
	candidates := []string{}
	if m.filename != "" {
		candidates = append(candidates, m.filename)
	}
	if entries, err := os.ReadDir(m.config.SaveDir()); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), document.Extension) {
				candidates = append(candidates, filepath.Join(m.config.SaveDir(), entry.Name()))
			}
		}
	}
	for _, mapPath := range candidates {
		if cleanAbs(document.CompanionImagePath(mapPath)) == target {
			return mapPath
		}
	}
	return ""
}

func cleanAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (m *model) exportPNG(path string) error {
	opts := render.DefaultOptions()
	opts.MarkerSize = m.markerSize
	if err := render.SavePNG(m.doc, m.catalog, opts, path); err != nil {
		return err
	}
	m.log.Info().Str("path", path).Int("markers", len(m.doc.Markers)).Msg("exported png")
	return nil
}

func (m *model) exportTXT(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := writeListing(file, m.doc, m.catalog); err != nil {
		return err
	}
	m.log.Info().Str("path", path).Int("markers", len(m.doc.Markers)).Msg("exported listing")
	return nil
}

// writeListing prints every marker, top-most first, with its resolved icon.
func writeListing(w io.Writer, doc *document.Document, cat *catalog.Catalog) error {
	if _, err := fmt.Fprintf(w, "Map: %s\nMarkers: %d\n", doc.BackgroundPath, len(doc.Markers)); err != nil {
		return err
	}
	for i := len(doc.Markers) - 1; i >= 0; i-- {
		mk := doc.Markers[i]
		name := mk.Name
		if name == "" {
			name = "(unnamed)"
		}
		res := cat.Resolve(mk.Category, mk.IconIndex)
		icon := res.Icon.Name
		if icon == "" {
			icon = fmt.Sprintf("#%d", mk.IconIndex)
		}
		fmt.Fprintf(w, "\n%s\n", name)
		fmt.Fprintf(w, "  position: %s\n", mk.Position)
		fmt.Fprintf(w, "  icon:     %s / %s\n", mk.Category, icon)
		fmt.Fprintf(w, "  color:    %s\n", marker.SwatchName(mk.TextColor))
		if !mk.NameVisible {
			fmt.Fprintf(w, "  label:    hidden\n")
		}
		if mk.Description != "" {
			for _, line := range strings.Split(mk.Description, "\n") {
				fmt.Fprintf(w, "  | %s\n", line)
			}
		}
	}
	return nil
}
