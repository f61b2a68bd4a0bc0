package models

import "gorm.io/gorm"

// User is a staff account: the cashier recording payments, the registrar
// enrolling students, the administrator deciding waivers.
type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string `json:"fullName"`
	PasswordHash string `json:"-" gorm:"not null"`
	Roles        []Role `json:"roles" gorm:"many2many:user_roles;"`
}
