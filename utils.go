package main

import (
	"html"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// textField is a single or multi-line text input with a rune cursor.
type textField struct {
	runes     []rune
	pos       int
	multiline bool
}

func newTextField(text string, multiline bool) textField {
	r := []rune(text)
	return textField{runes: r, pos: len(r), multiline: multiline}
}

func (f textField) String() string {
	return string(f.runes)
}

func (f *textField) insert(text string) {
	if !f.multiline {
		text = strings.ReplaceAll(text, "\n", " ")
	}
	ins := []rune(text)
	out := make([]rune, 0, len(f.runes)+len(ins))
	out = append(out, f.runes[:f.pos]...)
	out = append(out, ins...)
	out = append(out, f.runes[f.pos:]...)
	f.runes = out
	f.pos += len(ins)
}

// handleKey applies an editing key and reports whether it was consumed.
func (f *textField) handleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyLeft:
		if f.pos > 0 {
			f.pos--
		}
	case tea.KeyRight:
		if f.pos < len(f.runes) {
			f.pos++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		f.pos = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		f.pos = len(f.runes)
	case tea.KeyBackspace:
		if f.pos > 0 {
			f.runes = append(f.runes[:f.pos-1], f.runes[f.pos:]...)
			f.pos--
		}
	case tea.KeyDelete:
		if f.pos < len(f.runes) {
			f.runes = append(f.runes[:f.pos], f.runes[f.pos+1:]...)
		}
	case tea.KeyEnter:
		if !f.multiline {
			return false
		}
		f.insert("\n")
	case tea.KeySpace:
		f.insert(" ")
	case tea.KeyTab:
		f.insert(" ")
	case tea.KeyRunes:
		f.insert(string(msg.Runes))
	case tea.KeyCtrlV:
		text, err := readClipboardText()
		if err != nil {
			return true
		}
		f.insert(cleanClipboardText(text))
	default:
		return false
	}
	return true
}

// display renders the text with a block cursor. Newlines become spaces
// unless keepLines is set.
func (f textField) display(keepLines bool) string {
	runes := make([]rune, len(f.runes))
	copy(runes, f.runes)
	if !keepLines {
		for i, r := range runes {
			if r == '\n' {
				runes[i] = ' '
			}
		}
	}
	if f.pos >= len(runes) {
		return string(runes) + "█"
	}
	if runes[f.pos] == '\n' {
		return string(runes[:f.pos]) + "█" + string(runes[f.pos:])
	}
	runes[f.pos] = '█'
	return string(runes)
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

// cleanClipboardText strips RTF and HTML markup, normalizes line endings and
// drops control characters other than newlines and tabs.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	switch {
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return strings.TrimRight(result.String(), "\n")
}

func extractTextFromRTF(rtf string) string {
	var result strings.Builder
	result.Grow(len(rtf))
	b := []byte(rtf)
	depth := 0
	// Groups starting with \* or a header destination hold no body text.
	skipDepth := -1

	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipDepth {
				skipDepth = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if c != '\\' {
			if skipDepth == -1 {
				result.WriteByte(c)
			}
			continue
		}
		if i+1 >= len(b) {
			break
		}
		next := b[i+1]
		switch {
		case next == '\'' && i+3 < len(b):
			if val, err := strconv.ParseUint(string(b[i+2:i+4]), 16, 8); err == nil && skipDepth == -1 {
				// Hex escapes are code page bytes; read them as Latin-1.
				result.WriteRune(rune(val))
			}
			i += 3
		case next == '\\' || next == '{' || next == '}':
			if skipDepth == -1 {
				result.WriteByte(next)
			}
			i++
		case next == '*':
			skipDepth = depth
			i++
		case isLetter(next):
			j := i + 1
			for j < len(b) && isLetter(b[j]) {
				j++
			}
			word := string(b[i+1 : j])
			for j < len(b) && (b[j] == '-' || (b[j] >= '0' && b[j] <= '9')) {
				j++
			}
			if j < len(b) && b[j] == ' ' {
				j++
			}
			i = j - 1
			switch word {
			case "fonttbl", "colortbl", "stylesheet", "info":
				skipDepth = depth
			case "par", "line":
				if skipDepth == -1 {
					result.WriteByte('\n')
				}
			case "tab":
				if skipDepth == -1 {
					result.WriteByte('\t')
				}
			}
		default:
			i++
		}
	}
	return strings.TrimSpace(result.String())
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func extractTextFromHTML(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	inTag := false
	var tag strings.Builder
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			fields := strings.Fields(strings.ToLower(tag.String()))
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "br", "br/", "/p", "/div":
				result.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(result.String()))
}
