package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zeliboba/irc/handlers"
)

// Run runs the terminal interface until the user quits or ctx is cancelled. The initial
// lines are handled as if they were typed, e.g. a /connect from the command line.
func Run(ctx context.Context, client Client, presenter *Presenter, initial ...string) error {
	inputs := make(chan string, 16)
	defer close(inputs)

	go runInputs(client, presenter, inputs)

	for _, line := range initial {
		inputs <- line
	}

	program := tea.NewProgram(newModel(client, presenter, inputs), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}

	// Nothing reads the presenter anymore. The program may have ended without a /quit.
	presenter.Close()
	_ = client.Quit()

	return err
}

// runInputs hands typed lines to the client one at a time, in order.
func runInputs(client Client, presenter *Presenter, inputs <-chan string) {
	for line := range inputs {
		action, err := handlers.Input(client, line)
		if handlers.IsUsageError(err) {
			presenter.onError(err.Error())
			continue
		}

		switch action {
		case handlers.ActionNone:
		case handlers.ActionQuit:
			_ = client.Quit()
			presenter.send(quitMsg{})
		default:
			presenter.send(actionMsg(action))
		}
	}
}
