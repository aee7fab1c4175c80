package models

import "strings"

// User represents a registered customer.
type User struct {
	Base
	Username  string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	FirstName string `json:"first_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
}

// FullName falls back to the username when no name was given.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
