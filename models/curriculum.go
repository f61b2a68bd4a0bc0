package models

import "gorm.io/gorm"

// Curriculum is the study track a student follows ("cursus"), e.g. initial
// or continuing education.
type Curriculum struct {
	gorm.Model
	TrackType string `json:"trackType" gorm:"uniqueIndex;not null"`
}
