package models

import "gorm.io/gorm"

// ProgramCategory groups programs for administrative purposes; the category
// name also selects the group-capacity tier from configuration.
type ProgramCategory struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// Program is a field of study ("filière"), e.g. "Informatique" / "INFO".
type Program struct {
	gorm.Model
	Name       string `json:"name" gorm:"uniqueIndex;not null"`
	ShortCode  string `json:"shortCode" gorm:"not null"`
	CategoryID uint   `json:"categoryId" gorm:"not null"`

	Category *ProgramCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Levels   []Level          `gorm:"foreignKey:ProgramID" json:"levels,omitempty"`
}

// Level is one study level within a program ("niveau"), carrying the
// tuition amount charged for that level.
type Level struct {
	gorm.Model
	Label         string  `json:"label" gorm:"not null"`
	TuitionAmount float64 `json:"tuitionAmount" gorm:"type:numeric(12,2);not null"`
	ProgramID     uint    `json:"programId" gorm:"not null;index"`
}
