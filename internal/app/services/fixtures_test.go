package services

import (
	"context"
	"testing"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

const (
	programCS     int64 = 1
	programME     int64 = 2
	programMBA    int64 = 3
	programDS     int64 = 4
	missingCourse int64 = 99
)

func strPtr(s string) *string { return &s }

// fixtureTables is a small catalog: Computer Science places courses 10, 11 and 12 in
// years 1, 1 and 2. Course 12 has a dangling prerequisite and course 10 a self edge.
func fixtureTables() models.CatalogTables {
	return models.CatalogTables{
		Departments: []models.Department{
			{DepartmentID: 1, DepartmentName: "Computer Science", School: "Computing"},
			{DepartmentID: 2, DepartmentName: "Mechanical Engineering", School: "Engineering"},
			{DepartmentID: 3, DepartmentName: "Civil Engineering", School: "Engineering"},
			{DepartmentID: 4, DepartmentName: "Business Administration", School: "Management"},
		},
		CatalogYears: []models.CatalogYear{
			{CatalogYearID: 1, Year: "2024/2025", IsActive: true},
		},
		Programs: []models.Program{
			{ProgramID: programCS, ProgramName: "Computer Science", DegreeType: "B.Sc.", TotalCreditsRequired: 120, CatalogYearID: 1, DepartmentID: 1},
			{ProgramID: programME, ProgramName: "Mechanical Engineering", DegreeType: "B.Eng.", TotalCreditsRequired: 150, CatalogYearID: 1, DepartmentID: 2},
			{ProgramID: programMBA, ProgramName: "Business Administration", DegreeType: "MBA", TotalCreditsRequired: 45, CatalogYearID: 1, DepartmentID: 4},
			{ProgramID: programDS, ProgramName: "Data Science", DegreeType: "B.Sc.", TotalCreditsRequired: 120, CatalogYearID: 1, DepartmentID: 1},
		},
		Courses: []models.Course{
			{CourseID: 10, CourseCode: "CSC101", CourseName: "Introduction to Computing", Credits: 3, DepartmentID: 1},
			{CourseID: 11, CourseCode: "CSC102", CourseName: "Introduction to Programming", Credits: 3, DepartmentID: 1},
			{CourseID: 12, CourseCode: "CSC201", CourseName: "Data Structures", Credits: 4, DepartmentID: 1},
			{CourseID: 20, CourseCode: "MEE101", CourseName: "Engineering Drawing", Credits: 3, DepartmentID: 2},
			{CourseID: 21, CourseCode: "MEE201", CourseName: "Thermodynamics", Credits: 3, DepartmentID: 2},
			{CourseID: 30, CourseCode: "MBA801", CourseName: "Managerial Economics", Credits: 3, DepartmentID: 4},
			{CourseID: 31, CourseCode: "MBA811", CourseName: "Marketing Management", Credits: 3, DepartmentID: 4},
		},
		ProgramCourses: []models.ProgramCourse{
			// listed out of order on purpose
			{ProgramID: programCS, CourseID: 12, Elective: true, IsMajor: true, YearRequired: 2, Semester: 3, Concentration: strPtr("Systems")},
			{ProgramID: programCS, CourseID: 10, Core: true, IsMajor: true, YearRequired: 1, Semester: 1},
			{ProgramID: programCS, CourseID: 11, Core: true, IsGenEd: true, YearRequired: 1, Semester: 2},
			{ProgramID: programME, CourseID: 21, Core: true, YearRequired: 2, Semester: 3},
			{ProgramID: programME, CourseID: 20, Core: true, YearRequired: 1, Semester: 1},
			{ProgramID: programMBA, CourseID: 31, Elective: true, YearRequired: 1, Semester: 2, Concentration: strPtr("Marketing")},
			{ProgramID: programMBA, CourseID: 30, Core: true, YearRequired: 1, Semester: 1},
		},
		Prerequisites: []models.Prerequisite{
			{CourseID: 11, PrerequisiteCourseID: 10},
			{CourseID: 12, PrerequisiteCourseID: 11},
			{CourseID: 12, PrerequisiteCourseID: missingCourse},
			{CourseID: 10, PrerequisiteCourseID: 10},
		},
	}
}

type testEngine struct {
	store      *kvstore.Memory
	catalog    CatalogService
	enrollment EnrollmentService
	progress   ProgressService
	snapshots  *repositories.SnapshotRepository
}

func newTestEngine(t *testing.T, opts EnrollmentOptions) *testEngine {
	t.Helper()

	store := kvstore.NewMemory()
	catalogRepo := repositories.NewCatalogRepository(store, fixtureTables(), logger.Nop())
	if err := catalogRepo.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snapshots := repositories.NewSnapshotRepository(store)
	catalog := NewCatalogService(catalogRepo, logger.Nop())
	return &testEngine{
		store:      store,
		catalog:    catalog,
		enrollment: NewEnrollmentService(catalog, snapshots, repositories.NewProfileRepository(store), opts, logger.Nop()),
		progress:   NewProgressService(snapshots, catalog, logger.Nop()),
		snapshots:  snapshots,
	}
}
