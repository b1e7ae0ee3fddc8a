package vault

import "errors"

// Common errors.
var (
	// ErrRecordNotFound is returned when an operation names a record
	// the vault does not hold.
	ErrRecordNotFound = errors.New("record not found")

	// ErrFieldNotFound is returned by operations that require a field
	// to exist, such as resolving a value for copy.
	ErrFieldNotFound = errors.New("field not found")

	// ErrNameTaken is returned by Rename when the target name is
	// already in use.
	ErrNameTaken = errors.New("record name already exists")
)
