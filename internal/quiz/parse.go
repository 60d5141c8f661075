package quiz

import (
	"fmt"
	"strings"
)

// DefaultCorrectMarker tags the correct option line in block-authored questions.
const DefaultCorrectMarker = "✅"

// ParseBlock parses one question authored as a single multi-line message.
// The first line is the question text; each following non-blank line is an
// option, exactly one of which carries the correct-answer marker. The marker
// is stripped from the stored option text and its position becomes the
// correct index.
func ParseBlock(input, marker string, maxOptions int) (Question, error) {
	if marker == "" {
		marker = DefaultCorrectMarker
	}
	if maxOptions < MinOptions {
		maxOptions = DefaultMaxOptions
	}

	var lines []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return Question{}, &ValidationError{Reason: "send the question on the first line and the options on the following lines"}
	}

	text := lines[0]
	optionLines := lines[1:]
	if len(optionLines) < MinOptions {
		return Question{}, &ValidationError{Reason: fmt.Sprintf("need at least %d options", MinOptions)}
	}
	if len(optionLines) > maxOptions {
		return Question{}, &ValidationError{Reason: fmt.Sprintf("at most %d options are allowed, got %d", maxOptions, len(optionLines))}
	}

	options := make([]string, 0, len(optionLines))
	correct := -1
	for i, line := range optionLines {
		if strings.Contains(line, marker) {
			if correct >= 0 {
				return Question{}, &ValidationError{Reason: "mark exactly one option as correct"}
			}
			correct = i
			line = strings.TrimSpace(strings.ReplaceAll(line, marker, ""))
		}
		if line == "" {
			return Question{}, &ValidationError{Reason: fmt.Sprintf("option %d is empty", i+1)}
		}
		options = append(options, line)
	}
	if correct < 0 {
		return Question{}, &ValidationError{Reason: "mark the correct option with " + marker}
	}

	return Question{Text: text, Options: options, CorrectIndex: correct}, nil
}
