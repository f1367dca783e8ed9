package tui

import (
	"context"
	"errors"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// State represents the current state of the TUI.
type State int

const (
	StateForm State = iota
	StateScoring
	StateResult
)

// errNoPredictor is reported when the form is submitted without a predictor.
var errNoPredictor = errors.New("no predictor configured")

// formField is one editable row of the form.
type formField struct {
	input  textinput.Model
	field  model.FormField
	choice int
}

func (f formField) value() string {
	if f.field.Kind == model.InputChoice {
		return f.field.Choices[f.choice]
	}
	return f.input.Value()
}

// Model holds the main TUI state.
type Model struct {
	ctx         context.Context
	lastError   error
	result      *model.Prediction
	fieldErrors map[string]bool
	theme       themes.Theme
	config      Config
	keymap      KeyMap
	help        help.Model
	spinner     spinner.Model
	fields      []formField
	predictions []*model.Prediction
	focus       int
	width       int
	height      int
	state       State
	showDetails bool
	quitting    bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	fields := make([]formField, len(model.FormFields))
	for i, f := range model.FormFields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 32
		in.Width = 24
		fields[i] = formField{field: f, input: in}
	}

	h := help.New()
	h.Width = cfg.Width

	m := Model{
		ctx:         ctx,
		config:      cfg,
		theme:       cfg.Theme,
		keymap:      DefaultKeyMap(),
		help:        h,
		spinner:     s,
		fields:      fields,
		fieldErrors: make(map[string]bool),
		width:       cfg.Width,
		height:      cfg.Height,
		showDetails: cfg.ShowDetails,
		state:       StateForm,
	}
	m.setValues(cfg.Defaults)
	m.setFocus(0)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Predictions returns every prediction made during the session.
func (m Model) Predictions() []*model.Prediction {
	return m.predictions
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keymap.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		switch m.state {
		case StateForm:
			return m.handleFormKey(msg)
		case StateResult:
			return m.handleResultKey(msg)
		case StateScoring:
			if key.Matches(msg, m.keymap.Quit) {
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateScoring {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case predictionMsg:
		return m.handlePrediction(msg), nil
	}

	if m.state == StateForm {
		return m.updateInput(msg)
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Submit):
		return m.submit()

	case key.Matches(msg, m.keymap.Reset):
		m.setValues(m.config.Defaults)
		m.lastError = nil
		m.fieldErrors = make(map[string]bool)
		return m, m.setFocus(0)

	case key.Matches(msg, m.keymap.Next):
		if msg.Type == tea.KeyEnter && m.focus == len(m.fields)-1 {
			return m.submit()
		}
		return m, m.setFocus((m.focus + 1) % len(m.fields))

	case key.Matches(msg, m.keymap.Prev):
		return m, m.setFocus((m.focus - 1 + len(m.fields)) % len(m.fields))

	case key.Matches(msg, m.keymap.ChoiceNext), key.Matches(msg, m.keymap.ChoicePrev):
		f := &m.fields[m.focus]
		if f.field.Kind != model.InputChoice {
			return m.updateInput(msg)
		}
		step := 1
		if key.Matches(msg, m.keymap.ChoicePrev) {
			step = len(f.field.Choices) - 1
		}
		f.choice = (f.choice + step) % len(f.field.Choices)
		delete(m.fieldErrors, f.field.Name)
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit), key.Matches(msg, m.keymap.Close):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.NewForm):
		m.setValues(m.config.Defaults)
		m.result = nil
		m.state = StateForm
		return m, m.setFocus(0)

	case key.Matches(msg, m.keymap.Edit):
		m.state = StateForm
		return m, m.setFocus(m.focus)

	case key.Matches(msg, m.keymap.Details):
		m.showDetails = !m.showDetails
	}
	return m, nil
}

// updateInput forwards msg to the focused text input.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := &m.fields[m.focus]
	if f.field.Kind == model.InputChoice {
		return m, nil
	}
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		delete(m.fieldErrors, f.field.Name)
	}
	return m, cmd
}

// submit validates the form and starts scoring.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw, err := model.ParseRawRecord(m.values())
	if err != nil {
		m.markErrors(err)
		return m, nil
	}
	if m.config.Predictor == nil {
		m.lastError = errNoPredictor
		return m, nil
	}

	m.lastError = nil
	m.fieldErrors = make(map[string]bool)
	m.state = StateScoring
	return m, tea.Batch(
		m.spinner.Tick,
		predictCmd(m.ctx, m.config.Predictor, raw, m.config.Source),
	)
}

func (m Model) handlePrediction(msg predictionMsg) Model {
	if msg.err != nil {
		m.state = StateForm
		m.markErrors(msg.err)
		return m
	}
	m.result = msg.prediction
	m.predictions = append(m.predictions, msg.prediction)
	m.lastError = nil
	m.state = StateResult
	return m
}

// markErrors records err and moves focus to the first offending field.
func (m *Model) markErrors(err error) {
	m.lastError = err
	m.fieldErrors = make(map[string]bool)
	for _, name := range common.DataErrorFields(err) {
		m.fieldErrors[name] = true
	}
	for i, f := range m.fields {
		if m.fieldErrors[f.field.Name] {
			m.setFocus(i)
			return
		}
	}
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.fields[m.focus].input.Blur()
	m.focus = i
	if m.fields[i].field.Kind == model.InputChoice {
		return nil
	}
	return m.fields[i].input.Focus()
}

func (m *Model) setValues(values map[string]string) {
	for i := range m.fields {
		f := &m.fields[i]
		v := values[f.field.Name]
		if f.field.Kind != model.InputChoice {
			f.input.SetValue(v)
			continue
		}
		f.choice = 0
		for j, c := range f.field.Choices {
			if c == v {
				f.choice = j
				break
			}
		}
	}
}

func (m Model) values() map[string]string {
	values := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		values[f.field.Name] = f.value()
	}
	return values
}
