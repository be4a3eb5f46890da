// Package dberrors defines the typed errors the query ingestion core
// hands back to its caller, adapted from the storage engine's own
// error package: the same "typed errors plus a classifier" shape,
// retargeted at the three error kinds this core actually raises
// (ClientError, ParseError, IoError/RangeError) instead of storage
// faults.
package dberrors

import (
	"fmt"

	"github.com/kartikbazzad/queryhost/internal/backtrace"
)

// ClientError is an envelope-level shape violation: non-array root,
// wrong top-level size, wrong type for kind/options. It always carries
// an empty backtrace and is terminal for the query.
type ClientError struct {
	Msg string
}

func (e *ClientError) Error() string { return "client error: " + e.Msg }

// NewClientError builds a ClientError with the given message.
func NewClientError(format string, args ...interface{}) *ClientError {
	return &ClientError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError is a term-level shape violation: bad array size, wrong
// opcode type, wrong datum shape. It carries the offending term's
// backtrace id.
type ParseError struct {
	Backtrace backtrace.ID
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at bt=%d: %s", e.Backtrace, e.Msg)
}

// NewParseError builds a ParseError at bt with the given message.
func NewParseError(bt backtrace.ID, format string, args ...interface{}) *ParseError {
	return &ParseError{Backtrace: bt, Msg: fmt.Sprintf(format, args...)}
}

// IoError wraps a short read or other I/O failure encountered while
// decoding the binary term encoding.
type IoError struct {
	Cause error
}

func (e *IoError) Error() string { return "io error: " + e.Cause.Error() }
func (e *IoError) Unwrap() error { return e.Cause }

// NewIoError wraps cause as an IoError. Returns nil if cause is nil.
func NewIoError(cause error) error {
	if cause == nil {
		return nil
	}
	return &IoError{Cause: cause}
}

// RangeError signals a malformed size field in the binary term
// encoding: a negative declared length, or a self-describing
// sub-message that failed to decode.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return "range error: " + e.Msg }

// NewRangeError builds a RangeError with the given message.
func NewRangeError(format string, args ...interface{}) *RangeError {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}
