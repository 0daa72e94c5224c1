package models

import "time"

// Employee represents a single employee record in the directory.
// JSON tags follow the field names the admin frontend already speaks.
type Employee struct {
	ID          uint      `json:"f_Id" gorm:"primaryKey"`
	Image       string    `json:"f_Image"`
	Name        string    `json:"f_Name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Email       string    `json:"f_Email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Mobile      string    `json:"f_Mobile" gorm:"type:varchar(20)"`
	Designation string    `json:"f_Designation" gorm:"type:varchar(100)"`
	Gender      string    `json:"f_Gender" gorm:"type:varchar(20)"`
	Courses     []string  `json:"f_Course" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"f_Createdate"`
	IsActive    bool      `json:"isActive"`
}
