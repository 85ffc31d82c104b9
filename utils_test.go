package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"mapmark/internal/catalog"
	"mapmark/internal/document"
	"mapmark/internal/logging"
	"mapmark/internal/marker"
)

func TestTextField_Editing(t *testing.T) {
	f := newTextField("helo", false)

	f.handleKey(tea.KeyMsg{Type: tea.KeyLeft})
	f.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.Equal(t, "hello", f.String())

	f.handleKey(tea.KeyMsg{Type: tea.KeyHome})
	f.handleKey(tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, "ello", f.String())

	f.handleKey(tea.KeyMsg{Type: tea.KeyEnd})
	f.handleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	f.handleKey(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, "ell ", f.String())
}

func TestTextField_Enter(t *testing.T) {
	single := newTextField("a", false)
	assert.False(t, single.handleKey(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, "a", single.String())

	multi := newTextField("a", true)
	assert.True(t, multi.handleKey(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, "a\n", multi.String())
}

func TestTextField_InsertSingleLine(t *testing.T) {
	f := newTextField("", false)
	f.insert("one\ntwo")
	assert.Equal(t, "one two", f.String())

	m := newTextField("", true)
	m.insert("one\ntwo")
	assert.Equal(t, "one\ntwo", m.String())
}

func TestTextField_Display(t *testing.T) {
	f := newTextField("abc", false)
	assert.Equal(t, "abc█", f.display(false))

	f.pos = 1
	assert.Equal(t, "a█c", f.display(false))

	m := newTextField("a\nb", true)
	m.pos = 1
	assert.Equal(t, "a█\nb", m.display(true))
	assert.Equal(t, "a█b", m.display(false))
}

func TestCleanClipboardText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Old mill", "Old mill"},
		{"crlf", "one\r\ntwo\rthree\n", "one\ntwo\nthree"},
		{"control chars", "a\x07b", "ab"},
		{"rtf", `{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}\f0\pard Old\par mill}`, "Old\nmill"},
		{"rtf escapes", `{\rtf1 caf\'e9 \{x\}}`, "café {x}"},
		{"html", "<div>Fish &amp; chips<br>daily</div>", "Fish & chips\ndaily"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanClipboardText(tt.in))
		})
	}
}

func TestWriteListing(t *testing.T) {
	m := newTestModel(t)
	openTestMap(t, m)
	placeAt(t, m, 10, 10)
	placeAt(t, m, 20, 10)
	m.doc.UpdateMarker(0, func(mk *marker.Marker) {
		mk.Name = "Inn"
		mk.Description = "warm\nbeds"
		mk.NameVisible = true
		mk.TextColor = marker.RGB{R: 0xff}
	})
	m.doc.UpdateMarker(1, func(mk *marker.Marker) { mk.Name = "Well" })

	var b strings.Builder
	err := writeListing(&b, m.doc, catalog.New(m.config.MarkersDir, logging.Nop()))

	assert.NoError(t, err)
	out := b.String()
	assert.Contains(t, out, "Markers: 2")
	assert.Less(t, strings.Index(out, "Well"), strings.Index(out, "Inn"), "top-most first")
	assert.Contains(t, out, "color:    red")
	assert.Contains(t, out, "  | beds")
	assert.Contains(t, out, "icon:     Basic / dot")
}

func TestLoadErrorText(t *testing.T) {
	assert.Equal(t, "file is corrupt", loadErrorText(document.ErrCorrupt))
	assert.Equal(t, "map image is missing", loadErrorText(document.ErrMissingAsset))
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "a.mapmark", withExt("a", document.Extension))
	assert.Equal(t, "a.MAPMARK", withExt("a.MAPMARK", document.Extension))
	assert.Equal(t, "a", trimMapExt("a.mapmark"))
}
