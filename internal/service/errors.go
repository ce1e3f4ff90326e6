package service

import (
	"errors"
	"fmt"
)

// Виды ошибок жизненного цикла заявки; сравнивать через errors.Is
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrPersistence       = errors.New("persistence error")
	ErrInvalidState      = errors.New("invalid state")
	ErrDeleteAllDisabled = errors.New("deleting all requests is disabled")
	// ErrInternal - неожиданный сбой чтения из хранилища
	ErrInternal = errors.New("internal error")
)

// LifecycleError описывает неуспешную операцию над заявкой.
// errors.Is совпадает с Kind, errors.As достаёт причину (например *encryption.Failure).
type LifecycleError struct {
	Op        string
	Kind      error
	RequestID int64
	Err       error
}

func (e *LifecycleError) Error() string {
	msg := e.Op
	if e.RequestID != 0 {
		msg = fmt.Sprintf("%s request %d", e.Op, e.RequestID)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LifecycleError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func lifecycleErr(op string, kind error, requestID int64, err error) *LifecycleError {
	return &LifecycleError{Op: op, Kind: kind, RequestID: requestID, Err: err}
}
