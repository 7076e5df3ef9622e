package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewSKU returns a process-unique stock-keeping token such as
// "PRD-0192F3A1C2D47E8B9A0B1C2D3E4F5061". UUIDv7 tokens are time-ordered,
// so SKUs minted later sort later.
func NewSKU(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	token := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	if prefix == "" {
		return token
	}
	return prefix + "-" + token
}
