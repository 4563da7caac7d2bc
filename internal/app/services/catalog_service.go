package services

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// CatalogReader is the raw table access the enrichment engine needs
type CatalogReader interface {
	Departments() []models.Department
	Programs() []models.Program
	Courses() []models.Course
	ProgramCourses() []models.ProgramCourse
	Prerequisites() []models.Prerequisite
}

// CatalogService defines the read-only join and enrichment queries over the catalog
type CatalogService interface {
	GetDepartmentsBySchool(school string) []models.Department
	GetProgramByName(name string) (*models.Program, error)
	GetProgramByID(programID int64) (*models.Program, error)
	GetProgramsByDepartment(departmentID int64) []models.Program
	GetCoursesForProgram(programID int64) ([]models.Course, error)
	GetEnrichedCoursesForProgram(programID int64) ([]models.EnrichedCourse, error)
	GetElectivesForProgram(programID int64) ([]models.EnrichedCourse, error)
	GetCoreCoursesForProgram(programID int64) ([]models.EnrichedCourse, error)
	GetConcentrations(programID int64) ([]string, error)
	GetCourseByID(courseID int64) (*models.Course, error)
	GetCourseByCode(code string) (*models.Course, error)
	GetPrerequisitesForCourse(courseID int64) ([]models.Course, error)
	GetCourseWithPrerequisites(courseID int64) (*models.CourseWithPrerequisites, error)
}

// catalogServiceImpl implements the CatalogService interface
type catalogServiceImpl struct {
	catalog CatalogReader
	logger  zerolog.Logger
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(catalog CatalogReader, logger zerolog.Logger) CatalogService {
	return &catalogServiceImpl{
		catalog: catalog,
		logger:  logger,
	}
}

// GetDepartmentsBySchool returns departments whose school matches exactly
func (s *catalogServiceImpl) GetDepartmentsBySchool(school string) []models.Department {
	out := []models.Department{}
	for _, d := range s.catalog.Departments() {
		if d.School == school {
			out = append(out, d)
		}
	}
	return out
}

// GetProgramByName looks a program up by its exact name
func (s *catalogServiceImpl) GetProgramByName(name string) (*models.Program, error) {
	for _, p := range s.catalog.Programs() {
		if p.ProgramName == name {
			p = p.WithTrack()
			return &p, nil
		}
	}
	return nil, apperrors.NewNotFoundError(apperrors.ErrProgramNotFound, name)
}

func (s *catalogServiceImpl) GetProgramByID(programID int64) (*models.Program, error) {
	for _, p := range s.catalog.Programs() {
		if p.ProgramID == programID {
			p = p.WithTrack()
			return &p, nil
		}
	}
	return nil, apperrors.NewNotFoundError(apperrors.ErrProgramNotFound, programID)
}

func (s *catalogServiceImpl) GetProgramsByDepartment(departmentID int64) []models.Program {
	out := []models.Program{}
	for _, p := range s.catalog.Programs() {
		if p.DepartmentID == departmentID {
			out = append(out, p)
		}
	}
	return out
}

// GetCoursesForProgram joins the program's placements with the course table
func (s *catalogServiceImpl) GetCoursesForProgram(programID int64) ([]models.Course, error) {
	enriched, err := s.GetEnrichedCoursesForProgram(programID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Course, len(enriched))
	for i, ec := range enriched {
		out[i] = ec.Course
	}
	return out, nil
}

// GetEnrichedCoursesForProgram merges each placed course with its placement attributes,
// ordered by year, semester and course code
func (s *catalogServiceImpl) GetEnrichedCoursesForProgram(programID int64) ([]models.EnrichedCourse, error) {
	program, err := s.GetProgramByID(programID)
	if err != nil {
		return nil, err
	}

	courses := s.courseIndex()
	seen := make(map[int64]bool)
	out := []models.EnrichedCourse{}

	for _, pc := range s.catalog.ProgramCourses() {
		if pc.ProgramID != programID || seen[pc.CourseID] {
			continue
		}
		course, ok := courses[pc.CourseID]
		if !ok {
			s.logger.Debug().Int64("programID", programID).Int64("courseID", pc.CourseID).Msg("Placement references missing course")
			continue
		}
		seen[pc.CourseID] = true
		out = append(out, enrich(*program, pc, course))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.YearRequired != b.YearRequired {
			return a.YearRequired < b.YearRequired
		}
		if a.Semester != b.Semester {
			return a.Semester < b.Semester
		}
		return a.CourseCode < b.CourseCode
	})
	return out, nil
}

func enrich(program models.Program, pc models.ProgramCourse, course models.Course) models.EnrichedCourse {
	ec := models.EnrichedCourse{
		Course:        course,
		ProgramID:     program.ProgramID,
		Core:          pc.Core,
		IsGenEd:       pc.IsGenEd,
		IsMajor:       pc.IsMajor,
		Elective:      pc.Elective,
		YearRequired:  pc.YearRequired,
		Semester:      pc.Semester,
		Concentration: pc.Concentration,
		Track:         program.Track,
	}
	if ec.Track == models.TrackUndergraduate {
		ec.Level = models.LevelLabel(pc.YearRequired)
	}
	return ec
}

func (s *catalogServiceImpl) GetElectivesForProgram(programID int64) ([]models.EnrichedCourse, error) {
	return s.filterEnriched(programID, func(ec models.EnrichedCourse) bool { return ec.Elective })
}

func (s *catalogServiceImpl) GetCoreCoursesForProgram(programID int64) ([]models.EnrichedCourse, error) {
	return s.filterEnriched(programID, func(ec models.EnrichedCourse) bool { return ec.Core })
}

// GetConcentrations lists the distinct concentration names used by a program, sorted
func (s *catalogServiceImpl) GetConcentrations(programID int64) ([]string, error) {
	enriched, err := s.GetEnrichedCoursesForProgram(programID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, ec := range enriched {
		if ec.Concentration == nil || seen[*ec.Concentration] {
			continue
		}
		seen[*ec.Concentration] = true
		out = append(out, *ec.Concentration)
	}
	sort.Strings(out)
	return out, nil
}

func (s *catalogServiceImpl) filterEnriched(programID int64, keep func(models.EnrichedCourse) bool) ([]models.EnrichedCourse, error) {
	enriched, err := s.GetEnrichedCoursesForProgram(programID)
	if err != nil {
		return nil, err
	}

	out := []models.EnrichedCourse{}
	for _, ec := range enriched {
		if keep(ec) {
			out = append(out, ec)
		}
	}
	return out, nil
}

func (s *catalogServiceImpl) GetCourseByID(courseID int64) (*models.Course, error) {
	course, ok := s.courseIndex()[courseID]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, courseID)
	}
	return &course, nil
}

func (s *catalogServiceImpl) GetCourseByCode(code string) (*models.Course, error) {
	for _, c := range s.catalog.Courses() {
		if c.CourseCode == code {
			c := c
			return &c, nil
		}
	}
	return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, code)
}

// GetPrerequisitesForCourse resolves prerequisite edges to course rows. Edges to
// courses missing from the catalog and self edges are dropped.
func (s *catalogServiceImpl) GetPrerequisitesForCourse(courseID int64) ([]models.Course, error) {
	courses := s.courseIndex()
	if _, ok := courses[courseID]; !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, courseID)
	}

	seen := make(map[int64]bool)
	out := []models.Course{}
	for _, pr := range s.catalog.Prerequisites() {
		if pr.CourseID != courseID || pr.PrerequisiteCourseID == courseID || seen[pr.PrerequisiteCourseID] {
			continue
		}
		prereq, ok := courses[pr.PrerequisiteCourseID]
		if !ok {
			s.logger.Debug().Int64("courseID", courseID).Int64("prerequisiteID", pr.PrerequisiteCourseID).Msg("Dropping dangling prerequisite")
			continue
		}
		seen[pr.PrerequisiteCourseID] = true
		out = append(out, prereq)
	}
	return out, nil
}

func (s *catalogServiceImpl) GetCourseWithPrerequisites(courseID int64) (*models.CourseWithPrerequisites, error) {
	course, err := s.GetCourseByID(courseID)
	if err != nil {
		return nil, err
	}
	prereqs, err := s.GetPrerequisitesForCourse(courseID)
	if err != nil {
		return nil, err
	}
	return &models.CourseWithPrerequisites{Course: *course, Prerequisites: prereqs}, nil
}

func (s *catalogServiceImpl) courseIndex() map[int64]models.Course {
	courses := s.catalog.Courses()
	idx := make(map[int64]models.Course, len(courses))
	for _, c := range courses {
		idx[c.CourseID] = c
	}
	return idx
}
