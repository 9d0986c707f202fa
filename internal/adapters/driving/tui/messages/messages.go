// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewDocuments lists the resume files.
	ViewDocuments
	// ViewSettings shows the resolved settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// AnswerStarted carries the stream opened for a question. Retrieval has
// finished; fragments follow as AnswerFragment messages.
type AnswerStarted struct {
	Question string
	Stream   *domain.AnswerStream
	Err      error
}

// AnswerFragment carries the next piece of a streaming answer.
type AnswerFragment struct {
	Text string
}

// AnswerDone ends a streaming answer. Err is set when generation failed.
type AnswerDone struct {
	Err error
}

// StatsLoaded carries the pipeline statistics.
type StatsLoaded struct {
	Stats domain.Stats
}

// DocumentsLoaded carries the list of resume files.
type DocumentsLoaded struct {
	Dir       string
	Documents []string
}

// DocumentRemoved signals a document was deleted.
type DocumentRemoved struct {
	Name string
	Err  error
}

// DocumentOpened signals a document was handed to the default application.
type DocumentOpened struct {
	Name string
	Err  error
}

// IndexRebuilt signals an index build finished.
type IndexRebuilt struct {
	Chunks int
	Err    error
}

// SettingsLoaded carries the resolved settings.
type SettingsLoaded struct {
	Values []driving.SettingValue
	Path   string
	Err    error
}
