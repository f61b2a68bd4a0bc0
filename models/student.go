package models

import (
	"time"

	"gorm.io/gorm"
)

// Student standing values. A student stays pending until the first tuition
// payment places them into a group.
const (
	StandingPending  = "pending"
	StandingEnrolled = "enrolled"
)

// Student represents the student model in the database.
type Student struct {
	gorm.Model
	Matricule string     `json:"matricule" gorm:"uniqueIndex;not null"`
	LastName  string     `json:"lastName" gorm:"not null"`
	FirstName string     `json:"firstName" gorm:"not null"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Gender    string     `json:"gender"`
	BirthDate *time.Time `json:"birthDate"`

	// Standing is enrolled if and only if GroupID is set; both are written
	// in the first-payment transaction.
	Standing string `json:"standing" gorm:"default:'pending'"`
	GroupID  *uint  `json:"groupId"`

	LedgerID       uint  `json:"ledgerId"`
	ProgramID      uint  `json:"programId"`
	LevelID        uint  `json:"levelId"`
	CurriculumID   *uint `json:"curriculumId"`
	AcademicYearID uint  `json:"academicYearId"`
	EnrolledByID   uint  `json:"enrolledById"`

	// --- GORM RELATIONSHIPS ---
	Ledger       *TuitionLedger `gorm:"foreignKey:LedgerID" json:"ledger,omitempty"`
	Group        *Group         `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Program      *Program       `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Level        *Level         `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	Curriculum   *Curriculum    `gorm:"foreignKey:CurriculumID" json:"curriculum,omitempty"`
	AcademicYear *AcademicYear  `gorm:"foreignKey:AcademicYearID" json:"academicYear,omitempty"`
	Waivers      []FeeWaiver    `gorm:"foreignKey:StudentID" json:"waivers,omitempty"`
}
