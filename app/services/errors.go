package services

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/models"
)

func isConflict(err error) bool { return errors.Is(err, models.ErrConflict) }

func isNotFound(err error) bool { return errors.Is(err, models.ErrNotFound) }
