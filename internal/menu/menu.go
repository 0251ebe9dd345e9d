package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	menuTitleConstant                   = "GitHub SSH profiles"
	exitChoiceKeyConstant               = "0"
	quitChoiceKeyConstant               = "q"
	exitChoiceTitleConstant             = "Exit"
	choicePromptConstant                = "Select an option: "
	inputPromptTemplateConstant         = "%s: "
	optionalInputPromptTemplateConstant = "%s (optional): "
	itemLineTemplateConstant            = "%s) %s\n"
	unknownChoiceTemplateConstant       = "Unknown option %q.\n"
	actionErrorTemplateConstant         = "Error: %v"
	requiredInputTemplateConstant       = "%s is required.\n"
	confirmationDeclinedConstant        = "Cancelled."
	affirmativeShortResponseConstant    = "y"
	affirmativeLongResponseConstant     = "yes"
	lineDelimiterConstant               = '\n'
	lineSeparatorConstant               = "\n"
	titleColorConstant                  = "33"
	keyColorConstant                    = "214"
	errorColorConstant                  = "9"
	actionsMissingMessageConstant       = "menu actions not configured"
	inputMissingMessageConstant         = "menu input not configured"
	outputMissingMessageConstant        = "menu output not configured"
)

// ErrActionsNotConfigured indicates the menu was created without actions.
var ErrActionsNotConfigured = errors.New(actionsMissingMessageConstant)

// ErrInputNotConfigured indicates the menu was created without an input reader.
var ErrInputNotConfigured = errors.New(inputMissingMessageConstant)

// ErrOutputNotConfigured indicates the menu was created without an output writer.
var ErrOutputNotConfigured = errors.New(outputMissingMessageConstant)

// Actions executes a command line assembled by the menu.
type Actions interface {
	Dispatch(executionContext context.Context, arguments []string) error
}

// Input describes one value the operator is asked for before dispatch.
type Input struct {
	Label string
	// Optional inputs may be left blank; they are split on whitespace into zero or more arguments.
	Optional bool
}

// Item is a single numbered menu entry.
type Item struct {
	Key          string
	Title        string
	Command      []string
	Inputs       []Input
	Confirmation string
}

// Dependencies enumerates collaborators required by Menu.
type Dependencies struct {
	Actions Actions
	Input   io.Reader
	Output  io.Writer
	Items   []Item
}

// Menu runs the synchronous select, prompt and dispatch loop.
type Menu struct {
	actions    Actions
	reader     *bufio.Reader
	writer     io.Writer
	items      []Item
	titleStyle lipgloss.Style
	keyStyle   lipgloss.Style
	errorStyle lipgloss.Style
}

// New constructs a Menu. DefaultItems are used when Dependencies.Items is empty.
func New(dependencies Dependencies) (*Menu, error) {
	if dependencies.Actions == nil {
		return nil, ErrActionsNotConfigured
	}
	if dependencies.Input == nil {
		return nil, ErrInputNotConfigured
	}
	if dependencies.Output == nil {
		return nil, ErrOutputNotConfigured
	}
	items := dependencies.Items
	if len(items) == 0 {
		items = DefaultItems()
	}

	renderer := lipgloss.NewRenderer(dependencies.Output)
	return &Menu{
		actions:    dependencies.Actions,
		reader:     bufio.NewReader(dependencies.Input),
		writer:     dependencies.Output,
		items:      items,
		titleStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(titleColorConstant)),
		keyStyle:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(keyColorConstant)),
		errorStyle: renderer.NewStyle().Foreground(lipgloss.Color(errorColorConstant)),
	}, nil
}

// Run shows the menu until the operator exits or the input ends.
// Action errors are printed and the loop continues.
func (menu *Menu) Run(executionContext context.Context) error {
	for {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if renderError := menu.render(); renderError != nil {
			return renderError
		}

		choice, endOfInput, readError := menu.prompt(choicePromptConstant)
		if readError != nil {
			return readError
		}
		if endOfInput && len(choice) == 0 {
			return nil
		}

		normalizedChoice := strings.ToLower(choice)
		if normalizedChoice == exitChoiceKeyConstant || normalizedChoice == quitChoiceKeyConstant {
			return nil
		}

		item, found := menu.find(normalizedChoice)
		if !found {
			if _, writeError := fmt.Fprintf(menu.writer, unknownChoiceTemplateConstant, choice); writeError != nil {
				return writeError
			}
			if endOfInput {
				return nil
			}
			continue
		}

		arguments, proceed, collectError := menu.collect(item)
		if collectError != nil {
			return collectError
		}
		if proceed {
			if dispatchError := menu.actions.Dispatch(executionContext, arguments); dispatchError != nil {
				if _, writeError := fmt.Fprintln(menu.writer, menu.errorStyle.Render(fmt.Sprintf(actionErrorTemplateConstant, dispatchError))); writeError != nil {
					return writeError
				}
			}
		}
		if endOfInput {
			return nil
		}
	}
}

func (menu *Menu) render() error {
	var builder strings.Builder
	builder.WriteString(lineSeparatorConstant)
	builder.WriteString(menu.titleStyle.Render(menuTitleConstant))
	builder.WriteString(lineSeparatorConstant)
	for _, item := range menu.items {
		builder.WriteString(fmt.Sprintf(itemLineTemplateConstant, menu.keyStyle.Render(item.Key), item.Title))
	}
	builder.WriteString(fmt.Sprintf(itemLineTemplateConstant, menu.keyStyle.Render(exitChoiceKeyConstant), exitChoiceTitleConstant))
	_, writeError := io.WriteString(menu.writer, builder.String())
	return writeError
}

// collect gathers the inputs for item. It returns proceed=false when a required
// input is blank, the confirmation is declined, or the input ends early.
func (menu *Menu) collect(item Item) ([]string, bool, error) {
	arguments := append([]string{}, item.Command...)
	for _, input := range item.Inputs {
		template := inputPromptTemplateConstant
		if input.Optional {
			template = optionalInputPromptTemplateConstant
		}
		value, endOfInput, readError := menu.prompt(fmt.Sprintf(template, input.Label))
		if readError != nil {
			return nil, false, readError
		}
		if input.Optional {
			arguments = append(arguments, strings.Fields(value)...)
			if endOfInput && len(value) == 0 {
				return nil, false, nil
			}
			continue
		}
		if len(value) == 0 {
			if !endOfInput {
				if _, writeError := fmt.Fprintf(menu.writer, requiredInputTemplateConstant, input.Label); writeError != nil {
					return nil, false, writeError
				}
			}
			return nil, false, nil
		}
		arguments = append(arguments, value)
	}

	if len(item.Confirmation) > 0 {
		response, _, readError := menu.prompt(item.Confirmation)
		if readError != nil {
			return nil, false, readError
		}
		switch strings.ToLower(response) {
		case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		default:
			_, writeError := fmt.Fprintln(menu.writer, confirmationDeclinedConstant)
			return nil, false, writeError
		}
	}
	return arguments, true, nil
}

// prompt writes text and reads one trimmed line. endOfInput reports that the reader is exhausted.
func (menu *Menu) prompt(text string) (string, bool, error) {
	if _, writeError := io.WriteString(menu.writer, text); writeError != nil {
		return "", false, writeError
	}
	line, readError := menu.reader.ReadString(lineDelimiterConstant)
	if readError != nil {
		if errors.Is(readError, io.EOF) {
			return strings.TrimSpace(line), true, nil
		}
		return "", false, readError
	}
	return strings.TrimSpace(line), false, nil
}

func (menu *Menu) find(choice string) (Item, bool) {
	for _, item := range menu.items {
		if strings.EqualFold(item.Key, choice) {
			return item, true
		}
	}
	return Item{}, false
}
