package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	selectionCancelledMessageConstant   = "selection cancelled"
	noOptionsMessageConstant            = "no options to select from"
	defaultIndexOutOfRangeTemplate      = "default index %d out of range for %d options"
	lineOptionTemplateConstant          = "%3d) %s\n"
	lineDefaultMarkerConstant           = " (default)"
	linePromptTemplateConstant          = "%s [1-%d, default %d]: "
	lineInvalidChoiceTemplateConstant   = "invalid choice %q, enter a number between 1 and %d\n"
	lineQuitResponseConstant            = "q"
	lineSelectionHeaderTemplateConstant = "%s\n"
)

// ErrSelectionCancelled indicates the user aborted an interactive selection.
var ErrSelectionCancelled = errors.New(selectionCancelledMessageConstant)

// ErrNoOptions indicates a selection was requested over an empty option list.
var ErrNoOptions = errors.New(noOptionsMessageConstant)

// SelectionPrompter presents labelled options and returns the zero-based index chosen.
type SelectionPrompter interface {
	Select(title string, options []string, defaultIndex int) (int, error)
}

// LinePrompter renders numbered options and reads the choice from a line-oriented reader.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter constructs a prompter from the provided reader and writer.
func NewLinePrompter(input io.Reader, output io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(input), writer: output}
}

// Select lists the options and interprets the reply. An empty reply picks the default;
// "q" or end of input cancels. Invalid replies are re-prompted.
func (prompter *LinePrompter) Select(title string, options []string, defaultIndex int) (int, error) {
	if validationError := validateSelection(options, defaultIndex); validationError != nil {
		return 0, validationError
	}

	if writeError := prompter.printf(lineSelectionHeaderTemplateConstant, title); writeError != nil {
		return 0, writeError
	}
	for optionIndex, option := range options {
		label := option
		if optionIndex == defaultIndex {
			label += lineDefaultMarkerConstant
		}
		if writeError := prompter.printf(lineOptionTemplateConstant, optionIndex+1, label); writeError != nil {
			return 0, writeError
		}
	}

	for {
		if writeError := prompter.printf(linePromptTemplateConstant, title, len(options), defaultIndex+1); writeError != nil {
			return 0, writeError
		}

		response, readError := prompter.reader.ReadString('\n')
		if readError != nil && readError != io.EOF {
			return 0, readError
		}

		trimmedResponse := strings.TrimSpace(strings.ToLower(response))
		switch {
		case trimmedResponse == lineQuitResponseConstant:
			return 0, ErrSelectionCancelled
		case len(trimmedResponse) == 0 && readError == io.EOF:
			return 0, ErrSelectionCancelled
		case len(trimmedResponse) == 0:
			return defaultIndex, nil
		}

		choice, parseError := strconv.Atoi(trimmedResponse)
		if parseError == nil && choice >= 1 && choice <= len(options) {
			return choice - 1, nil
		}

		if writeError := prompter.printf(lineInvalidChoiceTemplateConstant, trimmedResponse, len(options)); writeError != nil {
			return 0, writeError
		}
		if readError == io.EOF {
			return 0, ErrSelectionCancelled
		}
	}
}

func (prompter *LinePrompter) printf(format string, arguments ...any) error {
	if prompter.writer == nil {
		return nil
	}
	_, writeError := fmt.Fprintf(prompter.writer, format, arguments...)
	return writeError
}

func validateSelection(options []string, defaultIndex int) error {
	if len(options) == 0 {
		return ErrNoOptions
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		return fmt.Errorf(defaultIndexOutOfRangeTemplate, defaultIndex, len(options))
	}
	return nil
}
