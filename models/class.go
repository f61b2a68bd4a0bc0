package models

import "gorm.io/gorm"

// Class is the logical cohort for one program and level, e.g.
// "Informatique INFO Licence 1". The name is derived once at creation from
// the program and level and kept unique; the program and level references
// are stored explicitly rather than re-parsed from the name.
type Class struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	ProgramID   uint   `json:"programId" gorm:"not null"`
	LevelID     uint   `json:"levelId" gorm:"not null"`

	Program *Program `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Level   *Level   `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	Groups  []Group  `gorm:"foreignKey:ClassID" json:"groups,omitempty"`
}
