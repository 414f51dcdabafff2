// Package apperr carries the single typed error every core operation returns.
// The HTTP layer maps Kind to a status code; nothing else inspects messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation              Kind = "validation"
	KindNotFound                Kind = "not_found"
	KindDuplicateShipmentNumber Kind = "duplicate_shipment_number"
	KindInsufficientInventory   Kind = "insufficient_inventory"
	KindIllegalTransition       Kind = "illegal_transition"
	KindInUse                   Kind = "in_use"
	KindFormulaMissing          Kind = "formula_missing"
	KindStorageUnavailable      Kind = "storage_unavailable"
	KindInternal                Kind = "internal"
)

type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error

	// set for KindInsufficientInventory
	Limiter   string
	Shortfall int64

	// set for KindInternal once it has been logged
	CorrelationID string
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil && e.Msg != "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Message is the client-facing text, without the operation prefix.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable is true only for transport failures.
func (e *Error) Retryable() bool { return e.Kind == KindStorageUnavailable }

func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op, format string, args ...any) *Error {
	return New(KindValidation, op, format, args...)
}

func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, format, args...)
}

func IllegalTransition(op, format string, args ...any) *Error {
	return New(KindIllegalTransition, op, format, args...)
}

// Insufficient reports a failed feasibility check.
func Insufficient(op, limiter string, shortfall int64) *Error {
	return &Error{
		Kind:      KindInsufficientInventory,
		Op:        op,
		Msg:       fmt.Sprintf("insufficient inventory: limited by %s, short by %d", limiter, shortfall),
		Limiter:   limiter,
		Shortfall: shortfall,
	}
}

// As returns err as *Error, wrapping unknown errors as KindInternal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternal, "", err)
}

// KindOf returns "" for nil and KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }
