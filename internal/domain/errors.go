package domain

import "errors"

// ErrNotFound marks lookups that matched nothing. Callers translate it
// to their own not-found responses.
var ErrNotFound = errors.New("not found")
