package faults

import (
	"errors"
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindMarshalType
	KindArity
	KindUnknownFunction
	KindDuplicateName
	KindSignatureTooLarge
	KindUnsupportedType
	KindReentry
	KindInvalidUndo
	KindInvalidRedo
	KindUnknownHandle
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindMarshalType:       "marshal type",
	KindArity:             "arity",
	KindUnknownFunction:   "unknown function",
	KindDuplicateName:     "duplicate name",
	KindSignatureTooLarge: "signature too large",
	KindUnsupportedType:   "unsupported type",
	KindReentry:           "provenance reentry",
	KindInvalidUndo:       "invalid undo",
	KindInvalidRedo:       "invalid redo",
	KindUnknownHandle:     "unknown handle",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Error is the single error type surfaced by the bridge.
// Subject names the function, parameter or handle involved.
type Error struct {
	Kind    Kind
	Subject string
	Detail  string
	Cause   error
}

var _ error = new(Error)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Subject != "" {
		b.WriteString(": ")
		b.WriteString(e.Subject)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the Err* values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMarshalType       = &Error{Kind: KindMarshalType}
	ErrArity             = &Error{Kind: KindArity}
	ErrUnknownFunction   = &Error{Kind: KindUnknownFunction}
	ErrDuplicateName     = &Error{Kind: KindDuplicateName}
	ErrSignatureTooLarge = &Error{Kind: KindSignatureTooLarge}
	ErrUnsupportedType   = &Error{Kind: KindUnsupportedType}
	ErrReentry           = &Error{Kind: KindReentry}
	ErrInvalidUndo       = &Error{Kind: KindInvalidUndo}
	ErrInvalidRedo       = &Error{Kind: KindInvalidRedo}
	ErrUnknownHandle     = &Error{Kind: KindUnknownHandle}
)

func New(kind Kind, subject string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	}
}

func Wrap(kind Kind, subject string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Subject: subject,
		Cause:   cause,
	}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithSubject fills in the subject of an *Error that has none.
// Other errors are returned unchanged.
func WithSubject(err error, subject string) error {
	e, ok := err.(*Error)
	if !ok || e.Subject != "" {
		return err
	}
	ret := *e
	ret.Subject = subject
	return &ret
}
