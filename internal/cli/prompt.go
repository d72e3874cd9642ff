package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"todo-tracker/internal/models"
)

var errAborted = errors.New("aborted")

// Prompter asks the user for input on the terminal.
type Prompter interface {
	Confirm(title string) (bool, error)
	Input(title, description string) (string, error)
	Secret(title string) (string, error)
	SelectTodo(title string, todos []models.Todo) (int64, error)
}

// formPrompter renders each question as a one-field huh form.
type formPrompter struct{}

func runField(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errAborted
	}
	return err
}

func (formPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := runField(huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok))
	return ok, err
}

func (formPrompter) Input(title, description string) (string, error) {
	var value string
	err := runField(huh.NewInput().
		Title(title).
		Description(description).
		Value(&value))
	return value, err
}

func (formPrompter) Secret(title string) (string, error) {
	var value string
	err := runField(huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value))
	return value, err
}

func (formPrompter) SelectTodo(title string, todos []models.Todo) (int64, error) {
	opts := make([]huh.Option[int64], 0, len(todos))
	for _, t := range todos {
		opts = append(opts, huh.NewOption(todoLabel(t), t.ID))
	}
	var id int64
	err := runField(huh.NewSelect[int64]().
		Title(title).
		Options(opts...).
		Value(&id))
	return id, err
}

func todoLabel(t models.Todo) string {
	mark := " "
	if t.Completed {
		mark = "✓"
	}
	return fmt.Sprintf("%s #%d %s", mark, t.ID, t.Title)
}
