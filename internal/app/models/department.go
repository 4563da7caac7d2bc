package models

// Department represents an academic department grouped under a school
type Department struct {
	DepartmentID   int64  `json:"department_id" yaml:"department_id" validate:"gt=0"`
	DepartmentName string `json:"department_name" yaml:"department_name" validate:"required"`
	School         string `json:"school" yaml:"school" validate:"required"`
}
