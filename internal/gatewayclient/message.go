package gatewayclient

import (
	"errors"
	"fmt"
)

// Level is the display severity of a Message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Prompts shown to the user.
const (
	EmptyInputWarning = "Please enter a movie review."
	RetryHint         = "Please try again."
)

// Message is what a frontend shows after a prediction attempt.
type Message struct {
	Level Level
	Text  string
}

// Describe turns the result of Predict into a user-facing message.
func Describe(label string, err error) Message {
	if err == nil {
		return Message{Level: LevelSuccess, Text: label}
	}
	if errors.Is(err, ErrEmptyInput) {
		return Message{Level: LevelWarning, Text: EmptyInputWarning}
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Rejected() {
			return Message{Level: LevelError, Text: se.Detail}
		}
		return Message{Level: LevelError, Text: fmt.Sprintf("%s. %s", se.Detail, RetryHint)}
	}
	return Message{Level: LevelError, Text: fmt.Sprintf("Could not reach the gateway: %v. %s", err, RetryHint)}
}
