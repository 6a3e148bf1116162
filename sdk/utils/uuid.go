package utils

import (
	"strings"

	"github.com/google/uuid"
)

// UUIDv4NoDash names per-entry scratch directories.
func UUIDv4NoDash() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
