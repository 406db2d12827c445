package prompt

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

const (
	testPromptTitleConstant = "Select environment"
)

var testOptions = []string{"experimental1", "experimental2", "experimental3"}

func TestLinePrompterSelect(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		defaultIndex  int
		expectedIndex int
		expectedError error
	}{
		{name: "explicit_choice", input: "3\n", expectedIndex: 2},
		{name: "choice_without_newline", input: "2", expectedIndex: 1},
		{name: "empty_reply_uses_default", input: "\n", defaultIndex: 1, expectedIndex: 1},
		{name: "invalid_then_valid", input: "9\nabc\n1\n", defaultIndex: 2, expectedIndex: 0},
		{name: "quit_cancels", input: "q\n", expectedError: ErrSelectionCancelled},
		{name: "end_of_input_cancels", input: "", expectedError: ErrSelectionCancelled},
		{name: "invalid_then_end_of_input_cancels", input: "0", expectedError: ErrSelectionCancelled},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			prompter := NewLinePrompter(strings.NewReader(testCase.input), output)

			selectedIndex, selectionError := prompter.Select(testPromptTitleConstant, testOptions, testCase.defaultIndex)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, selectionError, testCase.expectedError)
				return
			}

			require.NoError(testInstance, selectionError)
			require.Equal(testInstance, testCase.expectedIndex, selectedIndex)
			for _, option := range testOptions {
				require.Contains(testInstance, output.String(), option)
			}
		})
	}
}

func TestSelectValidation(testInstance *testing.T) {
	prompter := NewLinePrompter(strings.NewReader("1\n"), nil)

	_, emptyError := prompter.Select(testPromptTitleConstant, nil, 0)
	require.ErrorIs(testInstance, emptyError, ErrNoOptions)

	_, rangeError := prompter.Select(testPromptTitleConstant, testOptions, len(testOptions))
	require.Error(testInstance, rangeError)

	_, negativeError := NewMenuPrompter(nil, nil).Select(testPromptTitleConstant, testOptions, -1)
	require.Error(testInstance, negativeError)
}

func TestMenuModelNavigation(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultIndex   int
		keys           []tea.KeyMsg
		expectedCursor int
		expectedError  error
	}{
		{
			name:           "enter_keeps_default",
			defaultIndex:   1,
			keys:           []tea.KeyMsg{{Type: tea.KeyEnter}},
			expectedCursor: 1,
		},
		{
			name:           "down_then_enter",
			keys:           []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyEnter}},
			expectedCursor: 2,
		},
		{
			name:           "up_wraps_to_last",
			keys:           []tea.KeyMsg{{Type: tea.KeyUp}, {Type: tea.KeyEnter}},
			expectedCursor: 2,
		},
		{
			name:           "vim_keys",
			keys:           []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("j")}, {Type: tea.KeyRunes, Runes: []rune("j")}, {Type: tea.KeyRunes, Runes: []rune("k")}, {Type: tea.KeyEnter}},
			expectedCursor: 1,
		},
		{
			name:          "escape_cancels",
			keys:          []tea.KeyMsg{{Type: tea.KeyEsc}},
			expectedError: ErrSelectionCancelled,
		},
		{
			name:          "ctrl_c_cancels",
			keys:          []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyCtrlC}},
			expectedError: ErrSelectionCancelled,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var model tea.Model = newMenuModel(testPromptTitleConstant, testOptions, testCase.defaultIndex)
			for _, keyMessage := range testCase.keys {
				model, _ = model.Update(keyMessage)
			}

			selectedIndex, selectionError := menuResult(model)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, selectionError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, selectionError)
			require.Equal(testInstance, testCase.expectedCursor, selectedIndex)
		})
	}
}

func TestMenuModelView(testInstance *testing.T) {
	model := newMenuModel(testPromptTitleConstant, testOptions, 0)
	view := model.View()
	require.Contains(testInstance, view, testPromptTitleConstant)
	for _, option := range testOptions {
		require.Contains(testInstance, view, option)
	}

	updatedModel, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(testInstance, command)
	require.Contains(testInstance, updatedModel.View(), testOptions[0])
}

func TestNewSelectionPrompterFallsBackWithoutTerminal(testInstance *testing.T) {
	prompter := NewSelectionPrompter(strings.NewReader(""), &bytes.Buffer{}, false)
	require.IsType(testInstance, &LinePrompter{}, prompter)
}
