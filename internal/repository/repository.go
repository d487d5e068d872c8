// Package repository implements persistence over gorm. Every method takes
// the request context and returns domain errors for missing rows and
// unique violations.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/domain"
)

const (
	uniqueViolation = "23505"
	// Raised when a malformed UUID is compared against a uuid column.
	invalidTextRepresentation = "22P02"
)

// translate maps store errors onto domain errors, wrapping with op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case invalidTextRepresentation:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Repositories bundles every store used by the services.
type Repositories struct {
	Users         UserRepository
	Locations     LocationRepository
	Saves         SaveRepository
	Lists         ListRepository
	Requests      RequestRepository
	Suggestions   SuggestionRepository
	Messages      MessageRepository
	Notifications NotificationRepository
	SavedPlaces   SavedPlaceRepository
}

// NewGorm builds all gorm backed repositories over db.
func NewGorm(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewGormUserRepository(db),
		Locations:     NewGormLocationRepository(db),
		Saves:         NewGormSaveRepository(db),
		Lists:         NewGormListRepository(db),
		Requests:      NewGormRequestRepository(db),
		Suggestions:   NewGormSuggestionRepository(db),
		Messages:      NewGormMessageRepository(db),
		Notifications: NewGormNotificationRepository(db),
		SavedPlaces:   NewGormSavedPlaceRepository(db),
	}
}
