package bridge

import "f1databridge/pkg/failure"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the one JSON object printed per invocation.
type Envelope struct {
	Status    string  `json:"status"`
	Data      any     `json:"data,omitempty"`
	Message   string  `json:"message,omitempty"`
	Traceback *string `json:"traceback,omitempty"`
}

func Success(data any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// Failure builds the error envelope of a failed operation, traceback included.
func Failure(err error) Envelope {
	tb := failure.Traceback(err)
	return Envelope{Status: StatusError, Message: err.Error(), Traceback: &tb}
}

// dispatchError is used before any operation runs and carries no traceback.
func dispatchError(message string) Envelope {
	return Envelope{Status: StatusError, Message: message}
}
