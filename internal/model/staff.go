package model

import "golang.org/x/crypto/bcrypt"

// Staff represents a store employee who operates a scan device and a
// billing terminal. Token issuance happens in the external auth service;
// the password hash lives here so that service has something to check.
type Staff struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	PhoneNumber string `gorm:"type:varchar(20)" json:"phone_number"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// SetPassword hashes and sets the staff member's password
func (s *Staff) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash
func (s *Staff) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(password)) == nil
}
