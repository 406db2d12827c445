package prompt

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	menuCursorConstant        = "> "
	menuPaddingConstant       = "  "
	menuHelpConstant          = "↑/↓ move • enter select • esc cancel"
	menuChosenTemplateSuffix  = "\n"
	menuChosenSeparatorConst  = ": "
	unexpectedModelTypeString = "unexpected menu model type"
)

var errUnexpectedModel = errors.New(unexpectedModelTypeString)

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	menuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	menuHelpStyle     = lipgloss.NewStyle().Faint(true)
	menuChosenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var menuKeys = menuKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c", "q")),
}

// menuModel is the bubbletea model behind MenuPrompter.
type menuModel struct {
	title     string
	options   []string
	cursor    int
	chosen    bool
	cancelled bool
}

func newMenuModel(title string, options []string, defaultIndex int) menuModel {
	return menuModel{title: title, options: options, cursor: defaultIndex}
}

func (model menuModel) Init() tea.Cmd {
	return nil
}

func (model menuModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, isKey := message.(tea.KeyMsg)
	if !isKey {
		return model, nil
	}

	switch {
	case key.Matches(keyMessage, menuKeys.Cancel):
		model.cancelled = true
		return model, tea.Quit
	case key.Matches(keyMessage, menuKeys.Select):
		model.chosen = true
		return model, tea.Quit
	case key.Matches(keyMessage, menuKeys.Up):
		if model.cursor > 0 {
			model.cursor--
		} else {
			model.cursor = len(model.options) - 1
		}
	case key.Matches(keyMessage, menuKeys.Down):
		if model.cursor < len(model.options)-1 {
			model.cursor++
		} else {
			model.cursor = 0
		}
	}

	return model, nil
}

func (model menuModel) View() string {
	if model.chosen {
		return menuTitleStyle.Render(model.title) + menuChosenSeparatorConst + menuChosenStyle.Render(model.options[model.cursor]) + menuChosenTemplateSuffix
	}
	if model.cancelled {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(menuTitleStyle.Render(model.title))
	builder.WriteString("\n")
	for optionIndex, option := range model.options {
		if optionIndex == model.cursor {
			builder.WriteString(menuSelectedStyle.Render(menuCursorConstant + option))
		} else {
			builder.WriteString(menuPaddingConstant + option)
		}
		builder.WriteString("\n")
	}
	builder.WriteString(menuHelpStyle.Render(menuHelpConstant))
	builder.WriteString("\n")
	return builder.String()
}

// MenuPrompter renders an arrow-key driven menu in the terminal.
type MenuPrompter struct {
	input  io.Reader
	output io.Writer
}

// NewMenuPrompter constructs a terminal menu prompter over the provided streams.
func NewMenuPrompter(input io.Reader, output io.Writer) *MenuPrompter {
	return &MenuPrompter{input: input, output: output}
}

// Select runs the menu until the user picks an option or cancels.
func (prompter *MenuPrompter) Select(title string, options []string, defaultIndex int) (int, error) {
	if validationError := validateSelection(options, defaultIndex); validationError != nil {
		return 0, validationError
	}

	program := tea.NewProgram(
		newMenuModel(title, options, defaultIndex),
		tea.WithInput(prompter.input),
		tea.WithOutput(prompter.output),
	)

	finalModel, runError := program.Run()
	if runError != nil {
		return 0, runError
	}

	return menuResult(finalModel)
}

func menuResult(finalModel tea.Model) (int, error) {
	model, isMenu := finalModel.(menuModel)
	if !isMenu {
		return 0, errUnexpectedModel
	}
	if model.cancelled || !model.chosen {
		return 0, ErrSelectionCancelled
	}
	return model.cursor, nil
}

// NewSelectionPrompter picks the terminal menu when both streams are terminals and
// falls back to the line prompter otherwise or when plain output is requested.
func NewSelectionPrompter(input io.Reader, output io.Writer, plain bool) SelectionPrompter {
	if !plain && isTerminal(input) && isTerminal(output) {
		return NewMenuPrompter(input, output)
	}
	return NewLinePrompter(input, output)
}

func isTerminal(stream any) bool {
	file, isFile := stream.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
