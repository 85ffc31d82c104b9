package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeInfo
	ModeEditName
	ModeEditDescription
	ModeMove
	ModeIconPicker
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpNewMap
	FileOpExportPNG
	FileOpExportTXT
)

type ConfirmAction int

const (
	ConfirmDeleteMarker ConfirmAction = iota
	ConfirmQuit
	ConfirmNewMap
	ConfirmOpenMap
	ConfirmOverwriteFile
)

const (
	// Zoom factors per step, matching a mouse wheel notch.
	zoomIn  = 1.1
	zoomOut = 0.9

	// Terminal cells are roughly twice as tall as they are wide.
	cellAspect = 2.0

	markerSizeStep = 5
	panelWidth     = 34
	markerGlyph    = '◆'
)

// Luminance ramp from dark to light used to draw the map in the terminal.
const shadeRamp = "@%#*+=-:. "
