package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView      *menu.View
	chatView      *chat.View
	documentsView *documents.View
	settingsView  *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// The app opens on the chat view.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	model := ""
	if ports.Models != nil {
		model = ports.Models.Default()
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		menuView:      menu.NewView(s),
		chatView:      chat.NewView(s, km, ports.RAG, model),
		documentsView: documents.NewView(s, ports.Documents, ports.RAG),
		settingsView:  settings.NewView(s, ports.Settings),
		currentView:   messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("resumerag"),
		a.chatView.Init(),
		a.loadStats(),
	)
}

// loadStats reads the pipeline statistics.
func (a *App) loadStats() tea.Cmd {
	rag, ctx := a.ports.RAG, a.ctx
	return func() tea.Msg {
		return messages.StatsLoaded{Stats: rag.Stats(ctx)}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			a.chatView.Reset()
			return a, a.chatView.Init()
		case messages.ViewDocuments:
			return a, a.documentsView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu:
			return a, a.loadStats()
		case messages.ViewHelp:
		}
		return a, nil

	case messages.AnswerStarted, messages.AnswerFragment, messages.AnswerDone:
		// Streams keep running when the user leaves the chat view
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.StatsLoaded:
		a.menuView, _ = a.menuView.Update(msg)
		a.chatView, _ = a.chatView.Update(msg)
		return a, nil

	case messages.IndexRebuilt:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.chatView, _ = a.chatView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, tea.Batch(cmd, a.loadStats())

	case messages.DocumentsLoaded, messages.DocumentRemoved, messages.DocumentOpened:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	return a, a.updateCurrent(msg)
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Chat:
  (type)      Enter a question
  enter       Ask
  esc         Stop a streaming answer, then back to Menu
  tab         Show or hide the passages behind the last answer
  ↑/↓         Scroll the conversation
  ctrl+l      New conversation

Documents:
  j/k, ↑/↓    Navigate
  enter       Actions
  o           Open in default application
  d           Remove
  r           Rebuild the index

Settings:
  enter       Edit (empty value resets to default)

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
