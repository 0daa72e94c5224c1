package repositories

import "staffdir/internal/models"

// LoginRepository defines the interface for credential data access.
type LoginRepository interface {
	GetByUsername(username string) (*models.Login, error)
	Create(login *models.Login) error
}
