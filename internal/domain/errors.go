package domain

import "errors"

// ErrTableMissing reports that the list table was dropped while clearing the
// list and was not recreated. An operator has to recreate it.
var ErrTableMissing = errors.New("list table dropped but not recreated")
