package pushagent

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupported   = errors.New("push notifications are not supported in this browser")
	ErrConfiguration = errors.New("VAPID public key not found in configuration or API")
	ErrBusy          = errors.New("another push operation is in progress")
)

// NetworkError is a failed exchange with the registration API
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
