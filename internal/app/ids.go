package app

import (
	"strings"

	"github.com/google/uuid"
)

const shortIDLength = 6

// NewShortID returns a six character lowercase alphanumeric id.
func NewShortID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:shortIDLength]
}
