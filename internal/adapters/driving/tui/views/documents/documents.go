// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when the view has no document service.
var ErrNoDocumentService = errors.New("document service not available")

// ActionOption represents a document action.
type ActionOption int

const (
	ActionOpenDocument ActionOption = iota
	ActionRemove
	ActionCancel
)

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	keys            *keymap.KeyMap
	documentService driving.DocumentService
	ragService      driving.RAGService
	ctx             context.Context

	dir          string
	documents    []string
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
	indexing     bool
	showingMenu  bool
	menuSelected ActionOption
	scrollOffset int
}

// NewView creates a new documents view. ragService may be nil, which
// disables reindexing.
func NewView(s *styles.Styles, documentService driving.DocumentService, ragService driving.RAGService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		keys:            keymap.DefaultKeyMap(),
		documentService: documentService,
		ragService:      ragService,
		ctx:             context.Background(),
		documents:       []string{},
	}
}

// WithContext sets the context used for reindexing.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the documents list.
func (v *View) Init() tea.Cmd {
	v.err = nil
	v.notice = ""
	v.showingMenu = false
	return v.loadDocuments()
}

// loadDocuments returns a command that lists the documents directory.
func (v *View) loadDocuments() tea.Cmd {
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoDocumentService}
		}
		return messages.DocumentsLoaded{Dir: svc.Dir(), Documents: svc.List()}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.dir = msg.Dir
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Removed %s. Press r to reindex.", msg.Name)
		return v, v.loadDocuments()

	case messages.DocumentOpened:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.notice = "Opened " + msg.Name
		}
		return v, nil

	case messages.IndexRebuilt:
		v.indexing = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.notice = fmt.Sprintf("Indexed %d chunks", msg.Chunks)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keys.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(k, v.keys.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case k == "enter":
		if len(v.documents) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionOpenDocument
		}
	case keymap.Matches(k, v.keys.Open):
		if name, ok := v.selectedName(); ok {
			return v, v.openDocument(name)
		}
	case keymap.Matches(k, v.keys.Remove):
		if name, ok := v.selectedName(); ok {
			return v, v.removeDocument(name)
		}
	case keymap.Matches(k, v.keys.Reindex):
		return v, v.reindex()
	case k == "l":
		return v, v.loadDocuments()
	case keymap.Matches(k, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// handleMenuKeyMsg handles key presses in action menu mode.
func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionOpenDocument {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		return v.handleMenuSelect()
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

// handleMenuSelect handles selection of an action.
func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false
	name, ok := v.selectedName()
	if !ok {
		return v, nil
	}

	switch v.menuSelected {
	case ActionOpenDocument:
		return v, v.openDocument(name)
	case ActionRemove:
		return v, v.removeDocument(name)
	case ActionCancel:
	}

	return v, nil
}

func (v *View) openDocument(name string) tea.Cmd {
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentOpened{Name: name, Err: ErrNoDocumentService}
		}
		return messages.DocumentOpened{Name: name, Err: svc.Open(name)}
	}
}

func (v *View) removeDocument(name string) tea.Cmd {
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentRemoved{Name: name, Err: ErrNoDocumentService}
		}
		return messages.DocumentRemoved{Name: name, Err: svc.Remove(name)}
	}
}

// reindex returns a command that rebuilds the index.
func (v *View) reindex() tea.Cmd {
	if v.ragService == nil || v.indexing {
		return nil
	}
	v.indexing = true
	v.err = nil
	v.notice = ""

	rag, ctx := v.ragService, v.ctx
	return func() tea.Msg {
		n, err := rag.IndexDocuments(ctx)
		return messages.IndexRebuilt{Chunks: n, Err: err}
	}
}

func (v *View) selectedName() (string, bool) {
	if v.selected < 0 || v.selected >= len(v.documents) {
		return "", false
	}
	return v.documents[v.selected], true
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, notices, help, and padding
	available := v.height - 9
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n")
	if v.dir != "" {
		b.WriteString(v.styles.Muted.Render(v.dir))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.showingMenu {
		b.WriteString(v.renderActionMenu())
		return b.String()
	}

	switch {
	case v.indexing:
		b.WriteString(v.styles.Muted.Render("Indexing documents..."))
		b.WriteString("\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents. Add PDF, .txt or .md files with \"resumerag documents add\"."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visibleItems; i++ {
		indicator := "  "
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + v.documents[i]))
		} else {
			b.WriteString(v.styles.Normal.Render(indicator + v.documents[i]))
		}
		b.WriteString("\n")
	}

	// Scroll indicator
	if len(v.documents) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.documents)),
			len(v.documents))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderActionMenu renders the action menu overlay.
func (v *View) renderActionMenu() string {
	var b strings.Builder

	if name, ok := v.selectedName(); ok {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Actions for: %s", name)))
		b.WriteString("\n\n")
	}

	options := []struct {
		action ActionOption
		label  string
	}{
		{ActionOpenDocument, "Open Document"},
		{ActionRemove, "Remove"},
		{ActionCancel, "Cancel"},
	}

	for _, opt := range options {
		if v.menuSelected == opt.action {
			b.WriteString(v.styles.Selected.Render("> " + opt.label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + opt.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	hints := []string{"[enter] actions", "[l] reload"}
	for _, b := range v.keys.DocumentsHelp() {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []string {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Indexing returns true while a rebuild is running.
func (v *View) Indexing() bool {
	return v.indexing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Notice returns the last status notice.
func (v *View) Notice() string {
	return v.notice
}
