package tempmem

import "errors"

var (
	// ErrAlreadyApplied is returned by Apply when called a second time
	// without an intervening Undo.
	ErrAlreadyApplied = errors.New("tempmem: patch already applied")

	// ErrNullAddress is returned by Apply when addr is 0.
	ErrNullAddress = errors.New("tempmem: null address")
)
