package models

// SnapshotRecord is one course in a student's enrollment snapshot. Catalog fields are
// copied at creation time and do not follow later catalog edits.
type SnapshotRecord struct {
	ID        string `json:"id"`
	CourseID  int64  `json:"course_id"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	Credits   int    `json:"credits"`
	Level     string `json:"level,omitempty"`
	Semester  int    `json:"semester"`
	Completed bool   `json:"completed"`
	Grade     string `json:"grade"`
}

// SnapshotPatch is a partial update of one snapshot record. Nil fields are left alone.
type SnapshotPatch struct {
	ID        string  `json:"id" validate:"required"`
	Completed *bool   `json:"completed,omitempty"`
	Grade     *string `json:"grade,omitempty" validate:"omitempty,oneof=A B C D E F"`
}

// StudentProfile holds the program a student was resolved to at signup
type StudentProfile struct {
	StudentID  string `json:"student_id" validate:"required"`
	ProgramID  int64  `json:"program_id" validate:"gt=0"`
	DegreeType string `json:"degree_type,omitempty"`
	Level      int    `json:"level,omitempty"`
}

// gradePoints is the five-point scale used for GPA
var gradePoints = map[string]float64{
	"A": 5,
	"B": 4,
	"C": 3,
	"D": 2,
	"E": 1,
	"F": 0,
}

// GradePoint returns the point value of a letter grade
func GradePoint(grade string) (float64, bool) {
	p, ok := gradePoints[grade]
	return p, ok
}

// ProgressSummary is computed from a snapshot on every read
type ProgressSummary struct {
	StudentID        string  `json:"student_id"`
	TotalCourses     int     `json:"total_courses"`
	CompletedCourses int     `json:"completed_courses"`
	TotalCredits     int     `json:"total_credits"`
	CompletedCredits int     `json:"completed_credits"`
	GradedCredits    int     `json:"graded_credits"`
	GPA              float64 `json:"gpa"`
}
