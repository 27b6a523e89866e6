// Package repository implements raw-SQL persistence over MySQL. Sentinel
// errors defined here let handlers translate failures into HTTP statuses
// without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no row. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, such as reusing a login within a company or registering a
// CPF twice. Handlers should translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
