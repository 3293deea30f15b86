package board

import (
	"errors"
	"fmt"
)

var (
	ErrFieldCount      = errors.New("expected 6 space-separated fields")
	ErrPlacement       = errors.New("invalid piece placement")
	ErrSideToMove      = errors.New("invalid side to move")
	ErrCastling        = errors.New("invalid castling rights")
	ErrEnPassant       = errors.New("invalid en passant square")
	ErrHalfMove        = errors.New("invalid halfmove clock")
	ErrFullMove        = errors.New("invalid fullmove number")
	ErrInvalidPosition = errors.New("illegal position")

	ErrIllegalMove = errors.New("illegal move")
)

// FEN field names used in FENError.Field.
const (
	FieldPlacement  = "placement"
	FieldSideToMove = "side to move"
	FieldCastling   = "castling"
	FieldEnPassant  = "en passant"
	FieldHalfMove   = "halfmove clock"
	FieldFullMove   = "fullmove number"
	FieldPosition   = "position"
)

// FENError reports which field of a FEN record was rejected and why. Err is
// one of the sentinels above, possibly wrapped with more detail.
type FENError struct {
	Field string
	Value string
	Err   error
}

func (e *FENError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("fen %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("fen %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FENError) Unwrap() error {
	return e.Err
}

func fenError(field, value string, sentinel error, format string, args ...any) *FENError {
	err := sentinel
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
	}
	return &FENError{Field: field, Value: value, Err: err}
}
