package main

import (
	"github.com/rs/zerolog"

	"mapmark/internal/catalog"
	"mapmark/internal/document"
	"mapmark/internal/marker"
)

type model struct {
	width             int
	height            int
	cursorX           int
	cursorY           int
	zPanMode          bool
	view              Viewport
	doc               *document.Document
	filename          string
	mode              Mode
	returnMode        Mode
	fromStartup       bool
	help              bool
	helpScroll        int
	selected          int
	input             textField
	fileOp            FileOperation
	fileList          []string
	selectedFileIndex int
	confirmAction     ConfirmAction
	pendingPath       string
	originalPos       marker.Point
	wasDirty          bool
	pickerCategory    int
	pickerIndex       int
	pickerIcons       []catalog.Icon
	markerSize        int
	errorMessage      string
	successMessage    string
	config            *Config
	catalog           *catalog.Catalog
	store             *document.Store
	watcher           *catalog.Watcher
	log               zerolog.Logger
}

// iconsChangedMsg reports that the icon folder of a category changed on disk.
type iconsChangedMsg struct {
	category string
}

type watchErrMsg struct {
	err error
}
