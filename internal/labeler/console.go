package labeler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/foodlabel/internal/model"
	"go.uber.org/zap"
)

// ErrInputClosed is returned when the operator's input ends before every food is labeled
var ErrInputClosed = errors.New("input closed before labeling finished")

// Console prompts an operator line by line.
// Each food is shown as "<food>: " and the next input line becomes its label.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger
}

// NewConsole creates a console labeler reading from in and prompting on out
func NewConsole(in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

// Label asks for a label for every food, in order.
// A suggestion, when present, is shown in brackets but never stored unless typed.
func (c *Console) Label(ctx context.Context, foods []string, suggestions map[string]string) (*model.LabelSet, error) {
	labels := model.NewLabelSet()

	for i, food := range foods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := io.WriteString(c.out, Prompt(food, suggestions[food])); err != nil {
			return nil, fmt.Errorf("write prompt: %w", err)
		}

		label, err := c.readLine()
		if err != nil {
			return nil, fmt.Errorf("label %d of %d (%q): %w", i+1, len(foods), food, err)
		}

		if err := labels.Set(food, label); err != nil {
			return nil, err
		}
		c.logger.Debug("Labeled food", zap.String("food", food), zap.String("label", label))
	}

	return labels, nil
}

// Prompt renders the prompt for one food
func Prompt(food, suggestion string) string {
	if food == model.MissingFood {
		food = model.MissingFoodDisplay
	}
	if suggestion == "" {
		return food + ": "
	}
	return fmt.Sprintf("%s [%s]: ", food, suggestion)
}

// readLine reads one line without its terminator.
// A final line with no newline still counts; EOF with nothing read does not.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
