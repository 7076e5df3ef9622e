package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// translate maps driver and gorm errors onto the model error kinds.
func translate(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", entity, models.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", entity, models.ErrDuplicateKey, err)
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}

// isUniqueViolation catches dialects whose error translator does not map
// unique-constraint failures to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, models.ErrNotFound)
}

func conflict(entity string, id uint, reason string) error {
	return fmt.Errorf("%s %d: %w: %s", entity, id, models.ErrConflict, reason)
}
