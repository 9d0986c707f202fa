// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"iter"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

// Turn is one question and its answer.
type Turn struct {
	Question string
	Answer   string
	Sources  []string
	Warning  string
	Err      error
	Done     bool
}

// stream is the answer currently being generated.
type stream struct {
	next     func() (string, error, bool)
	stop     func()
	cancel   context.CancelFunc
	stopping bool
}

// View is the chat view: transcript, question input, passages and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	passages  *list.PassageList
	statusbar *status.Bar

	ragService driving.RAGService
	ctx        context.Context
	model      string

	turns        []*Turn
	active       *stream
	showPassages bool
	scroll       int

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view. An empty model uses the configured default.
func NewView(s *styles.Styles, km *keymap.KeyMap, ragService driving.RAGService, model string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetModel(model)

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		passages:   list.NewPassageList(s),
		statusbar:  bar,
		ragService: ragService,
		ctx:        context.Background(),
		model:      model,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerStarted:
		return v.handleAnswerStarted(msg)

	case messages.AnswerFragment:
		return v.handleFragment(msg)

	case messages.AnswerDone:
		v.finish(msg.Err)
		return v, nil

	case messages.StatsLoaded:
		v.statusbar.SetChunks(msg.Stats.ChunksCount)
		return v, nil

	case messages.IndexRebuilt:
		if msg.Err == nil {
			v.statusbar.SetChunks(msg.Chunks)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		if v.active != nil {
			v.active.stopping = true
			v.active.cancel()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case tea.KeyEnter:
		if v.active != nil {
			return v, nil
		}
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.input.Reset()
		v.turns = append(v.turns, &Turn{Question: question})
		v.scroll = 0
		v.statusbar.SetState(status.StateThinking)
		v.statusbar.SetMessage("")
		return v, v.ask(question)

	case tea.KeyTab:
		v.showPassages = !v.showPassages
		return v, nil

	case tea.KeyCtrlL:
		if v.active == nil {
			v.turns = nil
			v.passages.SetHits(nil)
			v.scroll = 0
			v.statusbar.Clear()
		}
		return v, nil

	case tea.KeyUp:
		if v.showPassages {
			v.passages.MoveUp()
		} else {
			v.scroll++
		}
		return v, nil

	case tea.KeyDown:
		if v.showPassages {
			v.passages.MoveDown()
		} else if v.scroll > 0 {
			v.scroll--
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs retrieval and opens the answer stream.
func (v *View) ask(question string) tea.Cmd {
	ctx, cancel := context.WithCancel(v.ctx)
	v.active = &stream{cancel: cancel}

	rag := v.ragService
	model := v.model
	return func() tea.Msg {
		if rag == nil {
			return messages.AnswerStarted{Question: question, Err: ErrNoRAGService}
		}
		s, err := rag.QueryStream(ctx, question, model, 0)
		return messages.AnswerStarted{Question: question, Stream: s, Err: err}
	}
}

func (v *View) handleAnswerStarted(msg messages.AnswerStarted) (*View, tea.Cmd) {
	if v.active == nil {
		return v, nil
	}
	if msg.Err != nil || v.active.stopping {
		v.finish(msg.Err)
		return v, nil
	}

	turn := v.current()
	turn.Sources = msg.Stream.Sources
	turn.Warning = msg.Stream.Warning
	v.passages.SetHits(msg.Stream.Hits)
	if msg.Stream.Model != "" {
		v.statusbar.SetModel(msg.Stream.Model)
	}
	v.statusbar.SetState(status.StateStreaming)
	v.statusbar.SetHints(v.keymap.StreamingHelp())

	next, stop := iter.Pull2(msg.Stream.Fragments)
	v.active.next, v.active.stop = next, stop
	return v, readNext(next)
}

func (v *View) handleFragment(msg messages.AnswerFragment) (*View, tea.Cmd) {
	if v.active == nil || v.active.next == nil {
		return v, nil
	}
	if v.active.stopping {
		v.finish(nil)
		return v, nil
	}
	turn := v.current()
	turn.Answer += msg.Text
	return v, readNext(v.active.next)
}

// readNext pulls one fragment. Only one read is outstanding at a time.
func readNext(next func() (string, error, bool)) tea.Cmd {
	return func() tea.Msg {
		text, err, ok := next()
		if !ok {
			return messages.AnswerDone{}
		}
		if err != nil {
			return messages.AnswerDone{Err: err}
		}
		return messages.AnswerFragment{Text: text}
	}
}

// finish closes the active stream and records err on the current turn.
func (v *View) finish(err error) {
	if v.active == nil {
		return
	}
	stopping := v.active.stopping
	if v.active.stop != nil {
		v.active.stop()
	}
	v.active.cancel()
	v.active = nil
	v.statusbar.SetHints(v.keymap.ChatHelp())

	turn := v.current()
	turn.Done = true
	switch {
	case stopping:
		v.statusbar.Clear()
		v.statusbar.SetMessage("Stopped")
	case err != nil && !errors.Is(err, context.Canceled):
		turn.Err = err
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) && len(turn.Sources) == 0 {
			turn.Sources = genErr.Sources
		}
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
	default:
		v.statusbar.Clear()
	}
}

func (v *View) current() *Turn {
	if len(v.turns) == 0 {
		v.turns = append(v.turns, &Turn{})
	}
	return v.turns[len(v.turns)-1]
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("Resume Assistant")
	inputView := v.input.View()
	statusView := v.statusbar.View()

	bodyHeight := v.height - lipgloss.Height(header) - lipgloss.Height(inputView) - lipgloss.Height(statusView) - 3
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	if v.showPassages {
		v.passages.SetDimensions(v.width, bodyHeight)
		body = v.passages.View()
	} else {
		body = v.renderTranscript(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", inputView, statusView)
}

// renderTranscript renders the turns, keeping the last height lines
// (shifted up by the scroll offset).
func (v *View) renderTranscript(height int) string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the resume, e.g. \"What is their current role?\"")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	lines := make([]string, 0, len(v.turns)*4)
	for _, t := range v.turns {
		lines = append(lines, v.styles.User.Render("You: ")+wrap.Render(t.Question))

		answer := t.Answer
		if answer == "" && !t.Done {
			answer = "..."
		}
		lines = append(lines, v.styles.Assistant.Render("Assistant: ")+wrap.Render(answer))
		if t.Err != nil {
			lines = append(lines, v.styles.Error.Render("  "+t.Err.Error()))
		}
		if t.Warning != "" {
			lines = append(lines, v.styles.Warning.Render("  "+t.Warning))
		}
		if len(t.Sources) > 0 {
			lines = append(lines, v.styles.Source.Render("  Sources: "+strings.Join(t.Sources, ", ")))
		}
		lines = append(lines, "")
	}

	all := strings.Split(strings.Join(lines, "\n"), "\n")
	maxScroll := max(len(all)-height, 0)
	v.scroll = min(v.scroll, maxScroll)
	end := len(all) - v.scroll
	start := max(end-height, 0)
	return strings.Join(all[start:end], "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Turns returns the conversation so far.
func (v *View) Turns() []*Turn {
	return v.turns
}

// Streaming returns whether an answer is in progress.
func (v *View) Streaming() bool {
	return v.active != nil
}

// ShowingPassages returns whether the passages panel is shown.
func (v *View) ShowingPassages() bool {
	return v.showPassages
}

// Passages returns the passages retrieved for the last answer.
func (v *View) Passages() []domain.SearchHit {
	return v.passages.Hits()
}

// SetQuestion sets the text in the input.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// Reset focuses the input for a new question, keeping the transcript.
func (v *View) Reset() {
	v.input.Focus()
	v.input.SetValue("")
	v.showPassages = false
}
