package rawl

import (
	"github.com/prorochestvo/rawl/internal"
)

// Errors produced by rawl. Driver errors are returned unchanged and never match these.
var (
	ErrInvalidColumn    = internal.ErrInvalidColumn
	ErrTemplateMismatch = internal.ErrTemplateMismatch
	ErrInvalidDSN       = internal.ErrInvalidDSN
	ErrNotFound         = internal.ErrNotFound
	ErrNoTransaction    = internal.ErrNoTransaction
	ErrTransactionOpen  = internal.ErrTransactionOpen
)
