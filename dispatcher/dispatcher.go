/*
NAME
  dispatcher.go

DESCRIPTION
  dispatcher.go implements the fallback chain described in spec.md §4.7:
  rather than true stream teeing, a single bounded head buffer is read
  once from the source and handed to each adapter in turn; an adapter
  that fails with a recoverable error (§7's UnsupportedFormat/
  InsufficientData/CodecSpecific kinds) simply yields the same buffer to
  the next adapter in the chain. Grounded on the teacher's
  `pkg/errors`-based "try, inspect the error, continue" shape visible
  throughout `container/mts`, generalized from a single format into a
  multi-adapter chain.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dispatcher drives the in-house/ISO-BMFF/delegated adapter
// fallback chain over a bounded head buffer (§4.7).
package dispatcher

import (
	"errors"
	"io"
)

// DefaultHeadCap is the default number of bytes read from the source
// before dispatch begins, chosen to comfortably hold an MKV/MP4/ASF
// header object plus a first cluster/moof without exhausting memory
// on pathological inputs (§9's design note on head-buffer sizing).
const DefaultHeadCap = 2 << 20 // 2 MiB

// ByteSource hands back chunks of the underlying stream on demand. It
// mirrors the teacher's device/file.go Read-on-demand seam, generalized
// away from io.Reader so sources need not support re-reads.
type ByteSource interface {
	// Next returns the next chunk of bytes, or io.EOF once exhausted.
	// A final non-empty chunk may be returned alongside io.EOF.
	Next() ([]byte, error)
}

// ReadHead accumulates chunks from src into a single buffer until cap
// bytes have been collected or the source is exhausted.
func ReadHead(src ByteSource, cap int) ([]byte, error) {
	var buf []byte
	for len(buf) < cap {
		chunk, err := src.Next()
		buf = append(buf, chunk...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
		if len(chunk) == 0 {
			// A source returning nil, nil forever would spin this loop;
			// treat it as exhausted.
			return buf, nil
		}
	}
	return buf, nil
}

// Adapter is one entry in a fallback chain: a named parse attempt over
// the shared head buffer.
type Adapter struct {
	Name  string
	Parse func(head []byte) (interface{}, error)
}

// Chain is an ordered sequence of adapters to try against the same head
// buffer.
type Chain struct {
	Adapters []Adapter
}

// Result is the outcome of a successful Dispatch.
type Result struct {
	Adapter string
	Value   interface{}
}

// recoverable is satisfied by errors that expose whether the dispatcher
// should fall back to the next adapter (the mediainfo package's *Error
// implements this without dispatcher needing to import it, avoiding an
// import cycle between the two packages).
type recoverable interface {
	Recoverable() bool
}

// isRecoverable walks err's Unwrap chain looking for a recoverable
// error, per spec.md §7's propagation policy. Errors that don't
// implement recoverable (a caller's sample-callback error, a plain I/O
// error) are treated as non-recoverable: the dispatcher stops rather
// than silently swallowing an unrelated failure.
func isRecoverable(err error) bool {
	for err != nil {
		if r, ok := err.(recoverable); ok {
			return r.Recoverable()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ErrNoAdapters is returned when a Chain has no adapters configured.
var ErrNoAdapters = errors.New("dispatcher: no adapters configured")

// Dispatch tries each adapter against head in order, returning the
// first success. If an adapter fails with a non-recoverable error,
// Dispatch stops and returns that error immediately rather than trying
// later adapters. If every adapter fails recoverably, the last error is
// returned.
func (c Chain) Dispatch(head []byte) (*Result, error) {
	if len(c.Adapters) == 0 {
		return nil, ErrNoAdapters
	}
	var lastErr error
	for _, a := range c.Adapters {
		v, err := a.Parse(head)
		if err == nil {
			return &Result{Adapter: a.Name, Value: v}, nil
		}
		if !isRecoverable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
