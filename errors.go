/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the sealed error-kind taxonomy used across the
  mediainfo module (§7): UnsupportedFormat, InsufficientData, CodecSpecific,
  SinkError. The dispatcher's fallback logic is driven solely by the
  UnsupportedFormat tag.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mediainfo identifies and describes the tracks contained in a
// media file by parsing its container and codec headers from a byte
// stream, without decoding samples.
package mediainfo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a sealed taxonomy of error kinds.
type Kind int

// Recognized error kinds.
const (
	// UnsupportedFormat indicates the bytes do not conform to the
	// container an adapter handles, or conform to an unimplemented
	// profile. Recoverable: the dispatcher falls back to the next adapter.
	UnsupportedFormat Kind = iota
	// InsufficientData indicates a read past the buffer end with no more
	// source chunks available. Escalated to UnsupportedFormat at the
	// adapter boundary.
	InsufficientData
	// CodecSpecific indicates a known codec whose sub-parameters are
	// outside supported ranges. Treated as UnsupportedFormat for dispatch.
	CodecSpecific
	// SinkError indicates the caller's sample callback returned an error;
	// surfaced as-is, not retried.
	SinkError
)

func (k Kind) String() string {
	switch k {
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case InsufficientData:
		return "InsufficientData"
	case CodecSpecific:
		return "CodecSpecific"
	case SinkError:
		return "SinkError"
	default:
		return "unknown"
	}
}

// Error is the error type raised by every parser in this module.
type Error struct {
	Kind    Kind
	Adapter string // name of the adapter/parser that raised this error
	cause   error
}

func (e *Error) Error() string {
	if e.Adapter != "" {
		return fmt.Sprintf("%s: %s: %v", e.Adapter, e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Recoverable reports whether the dispatcher should fall back to the
// next adapter on this error, per §7's propagation policy. Satisfies
// dispatcher's unexported recoverable interface without dispatcher
// needing to import this package.
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case UnsupportedFormat, InsufficientData, CodecSpecific:
		return true
	default:
		return false
	}
}

// NewError wraps cause as an Error of the given kind, attributed to
// adapter (the parser/adapter name, used in MediaInfo.Parser on success).
func NewError(kind Kind, adapter string, cause error) *Error {
	return &Error{Kind: kind, Adapter: adapter, cause: cause}
}

// Unsupported wraps cause as an UnsupportedFormat error.
func Unsupported(adapter string, cause error) *Error {
	return NewError(UnsupportedFormat, adapter, cause)
}

// Unsupportedf is like Unsupported but builds the cause from a format string.
func Unsupportedf(adapter, format string, args ...interface{}) *Error {
	return NewError(UnsupportedFormat, adapter, errors.Errorf(format, args...))
}

// IsUnsupported reports whether err (or its cause chain) is tagged
// UnsupportedFormat, InsufficientData, or CodecSpecific — i.e. whether the
// dispatcher should fall back to the next adapter, per spec.md §7's
// propagation policy ("Treated the same as UnsupportedFormat for dispatch
// purposes").
func IsUnsupported(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case UnsupportedFormat, InsufficientData, CodecSpecific:
		return true
	default:
		return false
	}
}

// KindOf returns the Kind of err, or -1 if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return -1
	}
	return e.Kind
}
