package models

// Login represents an administrative credential record. Credentials are
// pre-provisioned; there is no registration endpoint.
type Login struct {
	SNo      uint   `json:"f_sno" gorm:"primaryKey"`
	Username string `json:"f_userName" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Password string `json:"-" gorm:"type:varchar(255)" validate:"required"` // bcrypt hash, never serialized
}
