// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a conversion failure so callers can choose between
// retrying, reporting, and giving up.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidURL
	KindAuth
	KindNotFound
	KindRateLimit
	KindTransport
	KindParse
	KindMalformedNode
	KindAssetFetch
	KindCancelled
	KindInvalidOptions
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindMalformedNode:
		return "malformed_node"
	case KindAssetFetch:
		return "asset_fetch"
	case KindCancelled:
		return "cancelled"
	case KindInvalidOptions:
		return "invalid_options"
	default:
		return "internal"
	}
}

// MarshalText encodes the kind by name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	for kind := KindInternal; kind <= KindInvalidOptions; kind++ {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrInternal       = errors.New("internal invariant violation")
	ErrInvalidURL     = errors.New("invalid source url")
	ErrAuth           = errors.New("invalid or expired credential")
	ErrNotFound       = errors.New("file not found")
	ErrRateLimit      = errors.New("rate limited")
	ErrTransport      = errors.New("transport failure")
	ErrParse          = errors.New("malformed payload")
	ErrMalformedNode  = errors.New("malformed node")
	ErrAssetFetch     = errors.New("asset fetch failed")
	ErrCancelled      = errors.New("conversion cancelled")
	ErrInvalidOptions = errors.New("invalid conversion options")
)

var sentinels = map[ErrorKind]error{
	KindInternal:       ErrInternal,
	KindInvalidURL:     ErrInvalidURL,
	KindAuth:           ErrAuth,
	KindNotFound:       ErrNotFound,
	KindRateLimit:      ErrRateLimit,
	KindTransport:      ErrTransport,
	KindParse:          ErrParse,
	KindMalformedNode:  ErrMalformedNode,
	KindAssetFetch:     ErrAssetFetch,
	KindCancelled:      ErrCancelled,
	KindInvalidOptions: ErrInvalidOptions,
}

// Error is a classified pipeline error.
type Error struct {
	Kind ErrorKind
	// Op names the operation that failed (e.g. "load", "fetch asset").
	Op string
	// Subject is the file key, node id, or URL involved, if any.
	Subject string
	Err     error
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind ErrorKind, op, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := sentinels[e.Kind].Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Subject != "" {
		msg += " (" + e.Subject + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of the first *Error in err's chain. Errors that
// carry no kind are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether the caller may retry the failed operation.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindTransport:
		return true
	}
	return false
}

// Warning is a recoverable, stage-local failure recorded on the bundle.
type Warning struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	NodeID  string    `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Message string    `json:"message" yaml:"message"`
}

// WarningFrom converts a classified error into a warning.
func WarningFrom(err error, nodeID string) Warning {
	return Warning{Kind: KindOf(err), NodeID: nodeID, Message: err.Error()}
}

func (w Warning) String() string {
	if w.NodeID != "" {
		return fmt.Sprintf("%s [%s]: %s", w.Kind, w.NodeID, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
