package models

import "gorm.io/gorm"

// Group is a capacity-bounded cohort of enrolled students within a class.
// Membership is implicit through Student.GroupID; the active member count
// must never exceed Capacity.
type Group struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null"`
	Capacity int    `json:"capacity" gorm:"not null"`
	ClassID  uint   `json:"classId" gorm:"not null;index"`

	Class *Class `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}
