package caches

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Reason string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("creation of document backend failed for reason : %s ", ve.Reason)
}

var (
	// ErrNoDocument is returned by a backend when no cache document has been
	// written yet, or it has been removed.
	ErrNoDocument = errors.New("no cache document found")
)
