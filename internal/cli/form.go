package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/churn/internal/model"
)

// FormPrompter collects a raw customer record one field at a time on a
// plain terminal.
type FormPrompter struct {
	reader *LineReader
	writer io.Writer
}

// NewFormPrompter creates a prompter reading answers from reader.
func NewFormPrompter(reader io.Reader, writer io.Writer) *FormPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &FormPrompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// Prompt asks for every field in form order. An empty answer keeps the
// value in defaults; an invalid answer is explained and asked again.
func (p *FormPrompter) Prompt(ctx context.Context, defaults map[string]string) (model.RawRecord, error) {
	values := make(map[string]string, len(model.FormFields))
	group := ""

	for _, field := range model.FormFields {
		if field.Group != group {
			group = field.Group
			if _, err := fmt.Fprintln(p.writer, "\n"+TitleStyle.UnsetMargins().Render(group)); err != nil {
				return model.RawRecord{}, fmt.Errorf("failed to write group header: %w", err)
			}
		}

		value, err := p.promptField(ctx, field, defaults[field.Name])
		if err != nil {
			return model.RawRecord{}, err
		}
		values[field.Name] = value
	}

	return model.ParseRawRecord(values)
}

func (p *FormPrompter) promptField(ctx context.Context, field model.FormField, def string) (string, error) {
	if field.Kind == model.InputChoice {
		if err := p.writeChoices(field); err != nil {
			return "", err
		}
	}

	for {
		prompt := field.Label
		if hint := field.Hint(); hint != "" && field.Kind != model.InputChoice {
			prompt += SubtleStyle.Render(" (" + hint + ")")
		}
		if def != "" {
			prompt += SubtleStyle.Render(" [" + def + "]")
		}
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input ended before %s: %w", field.Name, io.ErrUnexpectedEOF)
			}
			return "", err
		}
		if answer == "" {
			answer = def
		}

		value, err := normalizeAnswer(field, answer)
		if err == nil {
			return value, nil
		}
		if _, werr := fmt.Fprintln(p.writer, FormatError(err.Error())); werr != nil {
			return "", fmt.Errorf("failed to write validation error: %w", werr)
		}
	}
}

func (p *FormPrompter) writeChoices(field model.FormField) error {
	for i, choice := range field.Choices {
		if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, choice); err != nil {
			return fmt.Errorf("failed to write choices: %w", err)
		}
	}
	return nil
}

// Confirm asks a yes/no question. An empty answer is no.
func (p *FormPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" [y/N]")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// normalizeAnswer checks one answer against its field and returns the value
// to store. Choices may be answered by number or by value.
func normalizeAnswer(field model.FormField, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%s is required", field.Label)
	}

	switch field.Kind {
	case model.InputChoice:
		if slices.Contains(field.Choices, answer) {
			return answer, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(field.Choices) {
			return field.Choices[n-1], nil
		}
		return "", fmt.Errorf("%s must be %s", field.Label, field.Hint())
	case model.InputInteger:
		if _, err := strconv.ParseInt(answer, 10, 64); err != nil {
			return "", fmt.Errorf("%s must be a whole number", field.Label)
		}
	case model.InputNumber:
		v, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return "", fmt.Errorf("%s must be a number", field.Label)
		}
		if field.Bounded && (v < field.Min || v > field.Max) {
			return "", fmt.Errorf("%s must be %s", field.Label, field.Hint())
		}
	case model.InputDate:
		if _, err := model.ParseDate(answer); err != nil {
			return "", fmt.Errorf("%s must be a date (%s)", field.Label, field.Hint())
		}
	}
	return answer, nil
}
