package models

// CatalogTables holds the six reference tables of the catalog
type CatalogTables struct {
	Departments    []Department    `json:"departments" yaml:"departments"`
	CatalogYears   []CatalogYear   `json:"catalog_years" yaml:"catalog_years"`
	Programs       []Program       `json:"programs" yaml:"programs"`
	Courses        []Course        `json:"courses" yaml:"courses"`
	ProgramCourses []ProgramCourse `json:"program_courses" yaml:"program_courses"`
	Prerequisites  []Prerequisite  `json:"prerequisites" yaml:"prerequisites"`
}

// Clone returns a deep copy so callers cannot mutate shared rows
func (t CatalogTables) Clone() CatalogTables {
	out := CatalogTables{
		Departments:    append([]Department(nil), t.Departments...),
		CatalogYears:   append([]CatalogYear(nil), t.CatalogYears...),
		Programs:       append([]Program(nil), t.Programs...),
		Courses:        append([]Course(nil), t.Courses...),
		ProgramCourses: cloneProgramCourses(t.ProgramCourses),
		Prerequisites:  append([]Prerequisite(nil), t.Prerequisites...),
	}
	return out
}

func cloneProgramCourses(in []ProgramCourse) []ProgramCourse {
	if in == nil {
		return nil
	}
	out := make([]ProgramCourse, len(in))
	for i, pc := range in {
		if pc.Concentration != nil {
			c := *pc.Concentration
			pc.Concentration = &c
		}
		out[i] = pc
	}
	return out
}
