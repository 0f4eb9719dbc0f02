package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/axbind/bind"
	"github.com/ardnew/axbind/filebase"
	"github.com/ardnew/axbind/log"
	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/schema"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  functions         List function identifiers and their parameters
  maps              List map identifiers
  escape [PRESET]   Escape every result with PRESET (none to reset)
  reload            Drop cached definitions and rescan identifiers
  edit [@]ID        Edit a function (or @map) definition in $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type a pipeline to evaluate it:

    text | @map | function | function(arg, ...)

  Quote the text or an argument ("..." or '...') to include | , ( )
  Completions appear as you type a layer; Tab / Shift-Tab cycle candidates
  Use Up/Down arrows for history navigation (mode switches automatically)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// editDoneMsg is sent when an edit completes without error.
type editDoneMsg struct {
	id      string
	changed bool
}

// editDeclinedMsg is sent when the user declined to re-edit an invalid
// definition.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails.
type editErrorMsg struct{ err error }

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line of evaluated input.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the echo line of a control command.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	newExecutor  func() *bind.Executor
	exec         *bind.Executor
	ids          identifiers
	scope        schema.MetaOpts // session options, applied outside every pipeline
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL. newExecutor is called once at start and again on
// each reload command.
func Run(
	ctx context.Context,
	newExecutor func() *bind.Executor,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start", slog.String("cache_dir", cacheDir))

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	m, err := newModel(ctx, newExecutor, history, logger)
	if err != nil {
		return err
	}

	logger.TraceContext(ctx, "repl ready",
		slog.Int("functions", len(m.ids.functions)),
		slog.Int("maps", len(m.ids.maps)),
		slog.Int("history", history.Len()),
	)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	newExecutor func() *bind.Executor,
	history *History,
	logger log.Logger,
) (model, error) {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	m := model{
		ctxFunc:     func() context.Context { return ctx },
		input:       ti,
		newExecutor: newExecutor,
		logger:      logger,
		history:     history,
		historyIdx:  history.Len(),
		width:       defaultWidth,
		mode:        modeEval,
	}

	return m.reload()
}

// reload replaces the executor, dropping every cached definition, and
// rescans the available identifiers.
func (m model) reload() (model, error) {
	x := m.newExecutor()
	defs := x.Definitions()

	functions, err := defs.Functions.Identifiers()
	if err != nil {
		return m, err
	}

	maps, err := defs.Maps.Identifiers()
	if err != nil {
		return m, err
	}

	m.exec = x
	m.ids = identifiers{functions: functions, maps: maps}

	return m, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case editDoneMsg:
		if !msg.changed {
			return m, tea.Println(hintStyle.Render("edit cancelled: " + msg.id + " unchanged"))
		}

		reloaded, err := m.reload()
		if err != nil {
			return m, tea.Println(errorStyle.Render("error: " + err.Error()))
		}

		m.logger.DebugContext(m.ctxFunc(), "repl edit complete", slog.String("id", msg.id))

		return reloaded, tea.Println(hintStyle.Render("updated " + msg.id))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("edit error: " + msg.err.Error()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine renders the line below the input: the history position, a
// usage hint, a function signature, or the completion bar.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type text | layer ... or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval {
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if params := m.parameters(call.name); len(params) > 0 {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

// parameters returns the declared parameters of the function id, or nil.
func (m model) parameters(id string) []string {
	if !m.exec.Definitions().Functions.Exists(id) {
		return nil
	}

	fn, err := m.exec.Definitions().Functions.Query(id)
	if err != nil {
		return nil
	}

	return fn.Parameters
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1), nil

	case tea.KeyDown:
		return m.historyStep(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// With autoConfirm, a word that already equals its sole candidate is
// accepted. Deletions and cursor motion pass false so editing never
// completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(formatCommand(input))

	result, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(result)))
}

// evaluate parses and applies one pipeline line.
func (m model) evaluate(line string) (string, error) {
	p, err := Parse(line)
	if err != nil {
		return "", err
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("text", p.Text),
		slog.Int("layers", len(p.Layers)),
	)

	return m.exec.Apply(m.ctxFunc(), p.Text, p.Capture(), m.scope)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))

	name, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "f", "functions":
		return m, tea.Sequence(echo, tea.Println(m.listFunctions()))

	case "m", "maps":
		return m, tea.Sequence(echo, tea.Println(listIdentifiers(m.ids.maps, "@")))

	case "e", "escape":
		var note string

		m, note = m.setEscape(args)

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render(note)))

	case "r", "reload":
		reloaded, err := m.reload()
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return reloaded, tea.Sequence(echo, tea.Println(hintStyle.Render(fmt.Sprintf(
			"%d functions, %d maps", len(reloaded.ids.functions), len(reloaded.ids.maps),
		))))

	case "edit":
		edit, err := m.edit(args)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, edit)

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}
}

// edit returns the command editing the definition named by args, a
// function identifier or a map identifier prefixed with "@".
func (m model) edit(args []string) (tea.Cmd, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: usage: edit [@]identifier", ErrSyntax)
	}

	id, isMap := strings.CutPrefix(args[0], "@")
	if err := filebase.Validate(id); err != nil {
		return nil, err
	}

	defs := m.exec.Definitions()

	path := defs.Functions.Path(id)
	if isMap {
		path = defs.Maps.Path(id)
	}

	c := newEditCommand(m.ctxFunc, path, isMap, m.logger)

	return tea.Exec(c, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		default:
			return editDoneMsg{id: args[0], changed: c.changed}
		}
	}), nil
}

// setEscape sets the session escape from args and describes the result.
func (m model) setEscape(args []string) (model, string) {
	if len(args) == 0 {
		spec, ok := m.scope.Escape.Get()
		if !ok {
			return m, "escape: unset (presets: " + strings.Join(bind.EscapePresets(), ", ") + ")"
		}

		return m, "escape: " + spec
	}

	spec := strings.Join(args, " ")
	if spec == bind.EscapeNone {
		m.scope.Escape = optwrite.None[string]()

		return m, "escape: unset"
	}

	m.scope.Escape = optwrite.Some(spec)

	return m, "escape: " + spec
}

func (m model) listFunctions() string {
	var b strings.Builder

	for _, id := range m.ids.functions {
		b.WriteString("  " + id)

		if params := m.parameters(id); len(params) > 0 {
			b.WriteString(hintStyle.Render("(" + strings.Join(params, ", ") + ")"))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func listIdentifiers(ids []string, prefix string) string {
	var b strings.Builder

	for _, id := range ids {
		b.WriteString("  " + prefix + id + "\n")
	}

	return b.String()
}

// historyStep moves through history by step, switching to the mode of
// each entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int) model {
	idx := m.historyIdx + step

	if idx < 0 {
		return m
	}

	if idx >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)

		return m
	}

	entry, err := m.history.Entry(idx)
	if err != nil {
		return m
	}

	m.historyIdx = idx

	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// switchToMode switches to mode, saving and restoring the input of each
// mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
