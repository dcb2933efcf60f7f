package screen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	// ErrNotFound reports an element id that no column indexes.
	ErrNotFound = errors.New("element not found")
	// ErrDuplicateID reports two elements sharing an id within one scene.
	ErrDuplicateID = errors.New("duplicate element id")
)

// LookupError is returned by Scene.Element for unknown ids. It carries the
// closest known ids to help spot typos in documents.
type LookupError struct {
	ID          string
	Suggestions []string
}

func newLookupError(id string, known []string) *LookupError {
	e := &LookupError{ID: id}
	for i, m := range fuzzy.Find(id, known) {
		if i == 3 {
			break
		}
		e.Suggestions = append(e.Suggestions, m.Str)
	}
	return e
}

func (e *LookupError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%s: %q", ErrNotFound, e.ID)
	}
	return fmt.Sprintf("%s: %q (did you mean %s?)", ErrNotFound, e.ID, strings.Join(e.Suggestions, ", "))
}

func (e *LookupError) Unwrap() error { return ErrNotFound }
