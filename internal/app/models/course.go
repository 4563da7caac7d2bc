package models

// Course represents a course offered by a department.
type Course struct {
	CourseID     int64  `json:"course_id" yaml:"course_id" validate:"gt=0"`
	CourseCode   string `json:"course_code" yaml:"course_code" validate:"required,course_code"`
	CourseName   string `json:"course_name" yaml:"course_name" validate:"required"`
	Credits      int    `json:"credits" yaml:"credits" validate:"gt=0"`
	DepartmentID int64  `json:"department_id" yaml:"department_id" validate:"gt=0"`
}

// Prerequisite is a directed edge: CourseID requires PrerequisiteCourseID
type Prerequisite struct {
	CourseID             int64 `json:"course_id" yaml:"course_id" validate:"gt=0"`
	PrerequisiteCourseID int64 `json:"prerequisite_course_id" yaml:"prerequisite_course_id" validate:"gt=0,nefield=CourseID"`
}

// CourseWithPrerequisites is a course row plus its resolved prerequisite rows
type CourseWithPrerequisites struct {
	Course
	Prerequisites []Course `json:"prerequisites"`
}
