package chat

import (
	"errors"
	"fmt"
)

var ErrUnknownSender = errors.New("unknown sender")

// StorageError reports a failed read or write against the message log.
type StorageError struct {
	Op  string // "initialize", "append", "list", "clear"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
