package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
	tuitest "github.com/Veraticus/churn/internal/tui/testing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	err   error
	calls []model.RawRecord
}

func (f *fakePredictor) Predict(_ context.Context, raw model.RawRecord, source model.Source) (*model.Prediction, error) {
	f.calls = append(f.calls, raw)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Prediction{
		CustomerID:  raw.CustomerID,
		Source:      source,
		Probability: 0.8,
		Threshold:   model.DefaultThreshold,
		Churn:       true,
		Label:       model.RiskHigh,
	}, nil
}

var testDay = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, p Predictor, opts ...Option) Model {
	t.Helper()
	cfg := defaultConfig()
	cfg.Defaults = model.DefaultValues(testDay)
	cfg.Predictor = p
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(context.Background(), cfg)
}

func fieldIndex(t *testing.T, name string) int {
	t.Helper()
	for i, f := range model.FormFields {
		if f.Name == name {
			return i
		}
	}
	t.Fatalf("unknown field %s", name)
	return -1
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := tuitest.Send(m, msgs...)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// findPrediction runs cmd and returns the prediction message it yields.
func findPrediction(t *testing.T, cmd tea.Cmd) predictionMsg {
	t.Helper()
	for _, msg := range tuitest.Collect(cmd) {
		if pm, ok := msg.(predictionMsg); ok {
			return pm
		}
	}
	t.Fatal("command produced no prediction")
	return predictionMsg{}
}

func isQuit(cmd tea.Cmd) bool {
	for _, msg := range tuitest.Collect(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestNewModel_PrefillsDefaults(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, WithDefaults(map[string]string{
		model.FieldAge:        "52",
		model.FieldOccupation: "retired",
	}))

	values := m.values()
	want := model.DefaultValues(testDay)
	want[model.FieldAge] = "52"
	want[model.FieldOccupation] = "retired"
	assert.Equal(t, want, values)
	assert.Equal(t, StateForm, m.state)
	assert.Equal(t, 0, m.focus)
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name      string
		keys      []tea.Msg
		wantFocus int
	}{
		{"tab moves forward", []tea.Msg{tuitest.Key(tea.KeyTab)}, 1},
		{"down moves forward", []tea.Msg{tuitest.Key(tea.KeyDown), tuitest.Key(tea.KeyDown)}, 2},
		{"enter moves forward", []tea.Msg{tuitest.Key(tea.KeyEnter)}, 1},
		{"shift+tab wraps to last", []tea.Msg{tuitest.Key(tea.KeyShiftTab)}, len(model.FormFields) - 1},
		{"up after tab returns", []tea.Msg{tuitest.Key(tea.KeyTab), tuitest.Key(tea.KeyUp)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := send(t, newTestModel(t, &fakePredictor{}), tt.keys...)
			assert.Equal(t, tt.wantFocus, m.focus)
			assert.Equal(t, StateForm, m.state)
		})
	}
}

func TestModel_ChoiceCycling(t *testing.T) {
	m := newTestModel(t, &fakePredictor{})
	gender := fieldIndex(t, model.FieldGender)
	m.setFocus(gender)

	m, _ = send(t, m, tuitest.Key(tea.KeyRight))
	assert.Equal(t, model.GenderFemale, m.values()[model.FieldGender])

	m, _ = send(t, m, tuitest.Key(tea.KeyLeft), tuitest.Key(tea.KeyLeft))
	assert.Equal(t, model.GenderUnknown, m.values()[model.FieldGender])

	m, _ = send(t, m, tuitest.Key(tea.KeyRight))
	assert.Equal(t, model.GenderMale, m.values()[model.FieldGender])
}

func TestModel_TypingEditsFocusedField(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, WithDefaults(map[string]string{
		model.FieldCustomerID: "",
	}))

	m, _ = send(t, m, tuitest.Type("4q")...)
	assert.Equal(t, "4q", m.values()[model.FieldCustomerID])
	assert.False(t, m.quitting, "q types into the form")

	m, _ = send(t, m, tuitest.Key(tea.KeyBackspace))
	m, _ = send(t, m, tuitest.Type("2")...)
	assert.Equal(t, "42", m.values()[model.FieldCustomerID])
}

func TestModel_SubmitInvalidMarksFields(t *testing.T) {
	p := &fakePredictor{}
	m := newTestModel(t, p, WithDefaults(map[string]string{
		model.FieldAge:            "abc",
		model.FieldCurrentBalance: "lots",
	}))

	m, cmd := send(t, m, tuitest.Key(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Equal(t, StateForm, m.state)
	require.Error(t, m.lastError)
	assert.True(t, m.fieldErrors[model.FieldAge])
	assert.True(t, m.fieldErrors[model.FieldCurrentBalance])
	assert.Equal(t, fieldIndex(t, model.FieldAge), m.focus)
	assert.Empty(t, p.calls)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "✗")

	// fixing the value clears its marker
	m.fields[m.focus].input.SetValue("")
	m, _ = send(t, m, tuitest.Type("40")...)
	assert.False(t, m.fieldErrors[model.FieldAge])
	assert.True(t, m.fieldErrors[model.FieldCurrentBalance])
}

func TestModel_SubmitScoresAndShowsResult(t *testing.T) {
	p := &fakePredictor{}
	m := newTestModel(t, p, WithDefaults(map[string]string{model.FieldCustomerID: "77"}))

	m, cmd := send(t, m, tuitest.Key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	assert.Equal(t, StateScoring, m.state)
	assert.Contains(t, m.View(), "Scoring customer")

	m, _ = send(t, m, findPrediction(t, cmd))
	require.Len(t, p.calls, 1)
	assert.Equal(t, int64(77), p.calls[0].CustomerID)

	assert.Equal(t, StateResult, m.state)
	require.Len(t, m.Predictions(), 1)
	assert.Equal(t, model.SourceForm, m.Predictions()[0].Source)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "80.00%")
	assert.Contains(t, view, "HIGH RISK")
	assert.Contains(t, view, "Predictions this session: 1")
	assert.NotContains(t, view, "Features")
}

func TestModel_EnterOnLastFieldSubmits(t *testing.T) {
	m := newTestModel(t, &fakePredictor{})
	m.setFocus(len(m.fields) - 1)

	m, cmd := send(t, m, tuitest.Key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, StateScoring, m.state)
}

func TestModel_PredictorError(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		wantField  string
		wantFocus  int
		wantMarked bool
	}{
		{
			name:       "data error marks field",
			err:        common.NewDataError(model.FieldVintage, "out of range", nil),
			wantField:  model.FieldVintage,
			wantMarked: true,
			wantFocus:  fieldIndex(t, model.FieldVintage),
		},
		{
			name:      "scoring error keeps focus",
			err:       common.ErrScoringFailed,
			wantField: model.FieldVintage,
			wantFocus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, &fakePredictor{err: tt.err})
			m, cmd := send(t, m, tuitest.Key(tea.KeyCtrlS))
			m, _ = send(t, m, findPrediction(t, cmd))

			assert.Equal(t, StateForm, m.state)
			assert.ErrorIs(t, m.lastError, tt.err)
			assert.Equal(t, tt.wantMarked, m.fieldErrors[tt.wantField])
			assert.Equal(t, tt.wantFocus, m.focus)
			assert.Empty(t, m.Predictions())
		})
	}
}

func TestModel_NoPredictor(t *testing.T) {
	m := newTestModel(t, nil)
	m, cmd := send(t, m, tuitest.Key(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.lastError, errNoPredictor)
	assert.Equal(t, StateForm, m.state)
}

func resultModel(t *testing.T) Model {
	t.Helper()
	m := newTestModel(t, &fakePredictor{})
	m.setFocus(fieldIndex(t, model.FieldAge))
	m.fields[m.focus].input.SetValue("61")
	m, cmd := send(t, m, tuitest.Key(tea.KeyCtrlS))
	m, _ = send(t, m, findPrediction(t, cmd))
	require.Equal(t, StateResult, m.state)
	return m
}

func TestModel_ResultKeys(t *testing.T) {
	t.Run("new form resets values", func(t *testing.T) {
		m, _ := send(t, resultModel(t), tuitest.KeyPress("n"))
		assert.Equal(t, StateForm, m.state)
		assert.Equal(t, 0, m.focus)
		assert.Equal(t, "35", m.values()[model.FieldAge])
		assert.Len(t, m.Predictions(), 1)
	})

	t.Run("edit keeps values", func(t *testing.T) {
		m, _ := send(t, resultModel(t), tuitest.KeyPress("e"))
		assert.Equal(t, StateForm, m.state)
		assert.Equal(t, "61", m.values()[model.FieldAge])
	})

	t.Run("details toggles features", func(t *testing.T) {
		m, _ := send(t, resultModel(t), tuitest.KeyPress("d"))
		assert.True(t, m.showDetails)
		view := tuitest.StripANSI(m.View())
		assert.Contains(t, view, "Features")
		assert.Contains(t, view, model.FeatureBalanceVolatility)

		m, _ = send(t, m, tuitest.KeyPress("d"))
		assert.False(t, m.showDetails)
	})

	t.Run("q quits", func(t *testing.T) {
		m, cmd := send(t, resultModel(t), tuitest.KeyPress("q"))
		assert.True(t, m.quitting)
		assert.True(t, isQuit(cmd))
		assert.Empty(t, m.View())
	})
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		msg  tea.Msg
		name string
	}{
		{name: "esc", msg: tuitest.Key(tea.KeyEsc)},
		{name: "ctrl+c", msg: tuitest.Key(tea.KeyCtrlC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := send(t, newTestModel(t, &fakePredictor{}), tt.msg)
			assert.True(t, m.quitting)
			assert.True(t, isQuit(cmd))
		})
	}
}

func TestModel_ResetRestoresDefaults(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, WithDefaults(map[string]string{model.FieldCustomerID: ""}))
	m, _ = send(t, m, tuitest.Type("9")...)
	m, _ = send(t, m, tuitest.Key(tea.KeyTab), tuitest.Key(tea.KeyCtrlR))

	assert.Equal(t, "", m.values()[model.FieldCustomerID])
	assert.Equal(t, 0, m.focus)
	assert.NoError(t, m.lastError)
}

func TestModel_ViewScrollsToFocus(t *testing.T) {
	m := newTestModel(t, &fakePredictor{})
	m, _ = send(t, m, tuitest.WindowSize(80, 15), tuitest.Key(tea.KeyShiftTab))

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Last Transaction Date")
	assert.Contains(t, view, "YYYY-MM-DD")
	assert.NotContains(t, view, "Customer ID")
}

func TestModel_ViewShowsNotice(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, WithNotice("Prefilled from statement.ofx"))
	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Prefilled from statement.ofx")
	assert.Contains(t, view, "Customer Churn Prediction")
	assert.True(t, strings.Contains(view, "Profile"))
}

func TestRun_RequiresPredictor(t *testing.T) {
	_, err := Run(context.Background(), strings.NewReader(""), &strings.Builder{})
	assert.True(t, errors.Is(err, errNoPredictor))
}
