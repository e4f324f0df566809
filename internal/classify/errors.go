package classify

import "errors"

// Error kinds. Callers map them to transport statuses with errors.Is.
var (
	// ErrInvalidInput: the filter stage judged the text not to be a review.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGatewayTimeout: a completion call failed, timed out or returned
	// something unusable.
	ErrGatewayTimeout = errors.New("gateway timeout")
)

// RejectionMessage is the detail returned for texts that are not reviews.
const RejectionMessage = "Not a movie review, invalid input"

// Error is a terminal pipeline failure. Error() is the caller-facing detail.
type Error struct {
	Kind  error  // ErrInvalidInput or ErrGatewayTimeout
	Stage Stage  // stage that ended the pipeline
	State State  // StateRejected or StateFailed
	Err   error  // completion failure, nil for rejections
	msg   string // caller-facing detail
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind so that errors.Is(err, ErrInvalidInput) works.
func (e *Error) Is(target error) bool { return target == e.Kind }

func rejected() *Error {
	return &Error{
		Kind:  ErrInvalidInput,
		Stage: StageFilter,
		State: StateRejected,
		msg:   RejectionMessage,
	}
}

func failed(stage Stage, err error) *Error {
	return &Error{
		Kind:  ErrGatewayTimeout,
		Stage: stage,
		State: StateFailed,
		Err:   err,
		msg:   err.Error(),
	}
}
