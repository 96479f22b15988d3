package irc

import (
	"encoding/json"
	"log"
)

// DebugLogger is anything with a Println, like *log.Logger.
type DebugLogger interface {
	Println(v ...interface{})
}

type defaultDebugLogger struct{}

func (logger *defaultDebugLogger) Println(v ...interface{}) {
	log.Println(v...)
}

type debugPresenter struct {
	Presenter

	logger   DebugLogger
	indented bool
}

// NewDebugPresenter wraps next and logs all wire traffic that passes through it. Sent
// lines are logged as they are, received lines as the JSON of the decoded message. You
// may pass `nil` as a logger to use the standard log package's Println.
func NewDebugPresenter(next Presenter, logger DebugLogger, indented bool) Presenter {
	if logger == nil {
		logger = &defaultDebugLogger{}
	}
	if next == nil {
		next = NopPresenter{}
	}

	return &debugPresenter{Presenter: next, logger: logger, indented: indented}
}

func (presenter *debugPresenter) OnDebugLine(direction, line string) {
	presenter.Presenter.OnDebugLine(direction, line)

	if direction != DirectionIn {
		presenter.logger.Println(direction, line)
		return
	}

	message, err := ParseMessage(line)
	if err != nil {
		presenter.logger.Println(direction, line)
		return
	}

	var data []byte
	if presenter.indented {
		data, err = json.MarshalIndent(&message, "", "  ")
	} else {
		data, err = json.Marshal(&message)
	}
	if err != nil {
		return
	}

	presenter.logger.Println(direction, string(data))
}
