package models

import "fmt"

// ProgramCourse places a course inside a program. At most one row per (program, course).
type ProgramCourse struct {
	ProgramID     int64   `json:"program_id" yaml:"program_id" validate:"gt=0"`
	CourseID      int64   `json:"course_id" yaml:"course_id" validate:"gt=0"`
	Core          bool    `json:"core" yaml:"core"`
	IsGenEd       bool    `json:"is_gened" yaml:"is_gened"`
	IsMajor       bool    `json:"is_major" yaml:"is_major"`
	Elective      bool    `json:"elective" yaml:"elective"`
	YearRequired  int     `json:"year_required" yaml:"year_required" validate:"min=0,max=4"`
	Semester      int     `json:"semester" yaml:"semester" validate:"min=1,max=8"`
	Concentration *string `json:"concentration,omitempty" yaml:"concentration,omitempty"`
}

// Key returns the (program, course) pair identifying the placement
func (pc ProgramCourse) Key() [2]int64 {
	return [2]int64{pc.ProgramID, pc.CourseID}
}

// LevelLabel is the undergraduate display grouping, e.g. "200L"
func LevelLabel(yearRequired int) string {
	return fmt.Sprintf("%d00L", yearRequired)
}

// EnrichedCourse is a course merged with its placement attributes for one program
type EnrichedCourse struct {
	Course
	ProgramID     int64   `json:"program_id"`
	Core          bool    `json:"core"`
	IsGenEd       bool    `json:"is_gened"`
	IsMajor       bool    `json:"is_major"`
	Elective      bool    `json:"elective"`
	YearRequired  int     `json:"year_required"`
	Semester      int     `json:"semester"`
	Concentration *string `json:"concentration,omitempty"`
	Track         Track   `json:"track"`
	// Level is set for undergraduate programs only
	Level string `json:"level,omitempty"`
}

// Group returns the display bucket of the course: its level label or its semester
func (ec EnrichedCourse) Group() string {
	if ec.Track == TrackGraduate {
		return fmt.Sprintf("Semester %d", ec.Semester)
	}
	return ec.Level
}
