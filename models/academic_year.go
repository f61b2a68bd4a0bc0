package models

import "gorm.io/gorm"

// Academic year states. At most one year may be open at a time.
const (
	YearOpen   = "open"
	YearClosed = "closed"
)

// AcademicYear represents one school year, e.g. "2024-2025".
type AcademicYear struct {
	gorm.Model
	Label string `json:"label" gorm:"uniqueIndex;not null"`
	State string `json:"state" gorm:"default:'open'"`
}
