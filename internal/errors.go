package internal

import (
	"fmt"
)

// Kind classifies errors produced by rawl itself. Driver errors never carry a kind.
type Kind int

const (
	KindInvalidColumn Kind = iota + 1
	KindTemplateMismatch
	KindInvalidDSN
	KindNotFound
	KindNoTransaction
	KindTransactionOpen
)

var kindText = map[Kind]string{
	KindInvalidColumn:    "invalid column",
	KindTemplateMismatch: "template mismatch",
	KindInvalidDSN:       "invalid dsn",
	KindNotFound:         "not found",
	KindNoTransaction:    "no open transaction",
	KindTransactionOpen:  "transaction already open",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels, one per kind. Errors built by NewError match them with errors.Is.
var (
	ErrInvalidColumn    = Sentinel(KindInvalidColumn)
	ErrTemplateMismatch = Sentinel(KindTemplateMismatch)
	ErrInvalidDSN       = Sentinel(KindInvalidDSN)
	ErrNotFound         = Sentinel(KindNotFound)
	ErrNoTransaction    = Sentinel(KindNoTransaction)
	ErrTransactionOpen  = Sentinel(KindTransactionOpen)
)

func Sentinel(kind Kind) Error {
	return &kindError{kind: kind}
}

func NewError(kind Kind, format string, a ...interface{}) Error {
	return &kindError{kind: kind, description: fmt.Sprintf(format, a...)}
}

type Error interface {
	Kind() Kind
	Text() string
	Error() string
}

type kindError struct {
	kind        Kind
	description string
}

func (e *kindError) Kind() Kind {
	return e.kind
}

func (e *kindError) Text() string {
	return e.kind.String()
}

func (e *kindError) Error() string {
	if len(e.description) == 0 {
		return e.kind.String()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.description)
}

// Is reports kind equality so that any error of a kind matches its sentinel.
func (e *kindError) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Kind() == e.kind
}
