package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
)

// uniqueViolationMarkers cover sqlite, which only reports failures as text,
// and driver errors that were flattened to strings before reaching us.
var uniqueViolationMarkers = []string{
	"UNIQUE constraint failed",
	"duplicate key value",
	"Duplicate entry",
}

// IsUniqueViolation reports whether err is a unique constraint failure on any of
// the supported drivers. When constraintName is provided only errors naming it
// match.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if fault, ok := pkgerrors.DBFaultOf(err); ok {
		if !fault.Unique() {
			return false
		}
		if constraintName == "" {
			return true
		}
		return fault.Constraint == constraintName ||
			strings.Contains(fault.Message, constraintName) ||
			strings.Contains(fault.Detail, constraintName)
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
