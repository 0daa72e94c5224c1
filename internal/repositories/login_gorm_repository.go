package repositories

import (
	"errors"
	"fmt"

	"staffdir/internal/models"

	"gorm.io/gorm"
)

// GORMLoginRepository is a GORM implementation of LoginRepository.
type GORMLoginRepository struct {
	db *gorm.DB
}

// NewGORMLoginRepository creates a new instance of GORMLoginRepository.
func NewGORMLoginRepository(db *gorm.DB) *GORMLoginRepository {
	return &GORMLoginRepository{
		db: db,
	}
}

// GetByUsername retrieves a credential record by its username.
func (r *GORMLoginRepository) GetByUsername(username string) (*models.Login, error) {
	var login models.Login
	if err := r.db.First(&login, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("login with username %s: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get login by username %s: %w", username, err)
	}
	return &login, nil
}

// Create persists a new credential record. Used by the admin bootstrap.
func (r *GORMLoginRepository) Create(login *models.Login) error {
	if err := r.db.Create(login).Error; err != nil {
		return fmt.Errorf("failed to create login: %w", err)
	}
	return nil
}
