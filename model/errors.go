package model

import (
	"errors"
	"fmt"

	"xdao.co/certverify/ledger"
	"xdao.co/certverify/pdf"
	"xdao.co/certverify/resolve"
	"xdao.co/certverify/verify"
)

type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrInvalidDocument   ErrorCode = "INVALID_DOCUMENT"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrIntegrityMismatch ErrorCode = "INTEGRITY_MISMATCH"
	ErrLedgerUnavailable ErrorCode = "LEDGER_UNAVAILABLE"
	ErrInternal          ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Coded classifies err under a stable code for client-facing payloads. An
// error that already carries a code passes through unchanged.
func Coded(err error) *CodedError {
	var ce *CodedError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, verify.ErrNoLedger), errors.Is(err, ledger.ErrLedger):
		return NewError(ErrLedgerUnavailable, err.Error())
	case errors.Is(err, ledger.ErrEmptyWrite), errors.Is(err, pdf.ErrExtraction):
		return NewError(ErrInvalidDocument, err.Error())
	case errors.Is(err, resolve.ErrNotFound):
		return NewError(ErrNotFound, err.Error())
	case errors.Is(err, resolve.ErrIntegrity):
		return NewError(ErrIntegrityMismatch, err.Error())
	default:
		return NewError(ErrInternal, err.Error())
	}
}
