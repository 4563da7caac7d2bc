package models

import "strings"

// Track tells whether a program's courses are grouped by year or by semester
type Track string

const (
	TrackUndergraduate Track = "undergraduate"
	TrackGraduate      Track = "graduate"
)

// DegreeKind classifies a free-text degree type string
type DegreeKind string

const (
	DegreeUnknown  DegreeKind = "unknown"
	DegreeBachelor DegreeKind = "bachelor"
	DegreeMaster   DegreeKind = "master"
)

// ClassifyDegree maps a degree type string such as "B.Sc." or "MBA" to its kind
func ClassifyDegree(degreeType string) DegreeKind {
	d := strings.TrimSpace(degreeType)
	switch {
	case d == "":
		return DegreeUnknown
	case strings.HasPrefix(d, "M.") || strings.Contains(d, "Master") || strings.Contains(d, "MBA"):
		return DegreeMaster
	case strings.HasPrefix(d, "B.") || strings.Contains(d, "Bachelor"):
		return DegreeBachelor
	}
	return DegreeUnknown
}

// TrackForDegree returns the grouping track implied by a degree type string.
// Anything that is not master's-type is grouped by year.
func TrackForDegree(degreeType string) Track {
	if ClassifyDegree(degreeType) == DegreeMaster {
		return TrackGraduate
	}
	return TrackUndergraduate
}

// Program represents a named degree offering
type Program struct {
	ProgramID            int64  `json:"program_id" yaml:"program_id" validate:"gt=0"`
	ProgramName          string `json:"program_name" yaml:"program_name" validate:"required"`
	DegreeType           string `json:"degree_type" yaml:"degree_type" validate:"required"`
	TotalCreditsRequired int    `json:"total_credits_required" yaml:"total_credits_required" validate:"gt=0"`
	CatalogYearID        int64  `json:"catalog_year_id" yaml:"catalog_year_id" validate:"gt=0"`
	DepartmentID         int64  `json:"department_id" yaml:"department_id" validate:"gt=0"`

	// Track is assigned when the table is materialized, never read from storage
	Track Track `json:"-" yaml:"-"`
}

// WithTrack returns a copy of the program with Track derived from DegreeType
func (p Program) WithTrack() Program {
	p.Track = TrackForDegree(p.DegreeType)
	return p
}
