package repository

import "errors"

// ErrNotFound indicates an entity was not located. Task lookups scoped to an
// owner return it both for absent tasks and tasks owned by someone else, so
// ownership is never distinguishable from absence.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a uniqueness violation, e.g. a duplicate email.
var ErrConflict = errors.New("repository: conflict")
