package domain

import "errors"

// ErrEmailTaken is returned by stores when the unique email constraint rejects an insert.
var ErrEmailTaken = errors.New("email already registered")
