package repositories

import (
	"fmt"
	"sort"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// Validate checks references across the materialized tables. It returns nil or a
// *apperrors.CustomError wrapping ErrSchemaViolation whose Details["violations"]
// lists every problem found.
func (r *CatalogRepository) Validate() error {
	violations := CheckIntegrity(r.Tables())
	if len(violations) == 0 {
		return nil
	}

	return apperrors.NewCustomError(apperrors.ErrSchemaViolation,
		fmt.Sprintf("catalog has %d integrity violation(s): %s", len(violations), violations[0])).
		WithCode("SCHEMA_VIOLATION").
		WithDetails(map[string]interface{}{"violations": violations})
}

// CheckIntegrity returns a sorted list of cross-table violations
func CheckIntegrity(t models.CatalogTables) []string {
	var out []string
	add := func(format string, args ...interface{}) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	departments := make(map[int64]bool, len(t.Departments))
	for _, d := range t.Departments {
		departments[d.DepartmentID] = true
	}

	years := make(map[int64]bool, len(t.CatalogYears))
	active := 0
	for _, cy := range t.CatalogYears {
		years[cy.CatalogYearID] = true
		if cy.IsActive {
			active++
		}
	}
	if len(t.CatalogYears) > 0 && active != 1 {
		add("catalog_years: %d active rows, want exactly 1", active)
	}

	programs := make(map[int64]models.Program, len(t.Programs))
	for _, p := range t.Programs {
		programs[p.ProgramID] = p
		if !departments[p.DepartmentID] {
			add("programs: program %d references missing department %d", p.ProgramID, p.DepartmentID)
		}
		if !years[p.CatalogYearID] {
			add("programs: program %d references missing catalog year %d", p.ProgramID, p.CatalogYearID)
		}
	}

	courses := make(map[int64]bool, len(t.Courses))
	codes := make(map[string]int64, len(t.Courses))
	for _, c := range t.Courses {
		courses[c.CourseID] = true
		if other, dup := codes[c.CourseCode]; dup {
			add("courses: course code %s used by %d and %d", c.CourseCode, other, c.CourseID)
		}
		codes[c.CourseCode] = c.CourseID
		if !departments[c.DepartmentID] {
			add("courses: course %d references missing department %d", c.CourseID, c.DepartmentID)
		}
	}

	pairs := make(map[[2]int64]bool, len(t.ProgramCourses))
	for _, pc := range t.ProgramCourses {
		if pairs[pc.Key()] {
			add("program_courses: duplicate placement of course %d in program %d", pc.CourseID, pc.ProgramID)
		}
		pairs[pc.Key()] = true

		p, ok := programs[pc.ProgramID]
		if !ok {
			add("program_courses: placement references missing program %d", pc.ProgramID)
		}
		if !courses[pc.CourseID] {
			add("program_courses: placement in program %d references missing course %d", pc.ProgramID, pc.CourseID)
		}
		if !ok {
			continue
		}
		switch p.WithTrack().Track {
		case models.TrackGraduate:
			if pc.Semester < 1 || pc.Semester > 4 {
				add("program_courses: graduate program %d places course %d in semester %d", pc.ProgramID, pc.CourseID, pc.Semester)
			}
		default:
			if pc.YearRequired < 1 || pc.YearRequired > 4 {
				add("program_courses: undergraduate program %d places course %d in year %d", pc.ProgramID, pc.CourseID, pc.YearRequired)
			}
		}
	}

	graph := make(map[int64][]int64)
	for _, pr := range t.Prerequisites {
		if pr.CourseID == pr.PrerequisiteCourseID {
			add("prerequisites: course %d requires itself", pr.CourseID)
			continue
		}
		if !courses[pr.CourseID] {
			add("prerequisites: edge from missing course %d", pr.CourseID)
		}
		if !courses[pr.PrerequisiteCourseID] {
			add("prerequisites: course %d requires missing course %d", pr.CourseID, pr.PrerequisiteCourseID)
		}
		graph[pr.CourseID] = append(graph[pr.CourseID], pr.PrerequisiteCourseID)
	}
	for _, cycle := range findCycles(graph) {
		add("prerequisites: cycle through course %d", cycle)
	}

	sort.Strings(out)
	return out
}

// findCycles returns one course id per prerequisite cycle, found by depth-first search
func findCycles(graph map[int64][]int64) []int64 {
	const (
		unvisited = iota
		visiting
		done
	)

	nodes := make([]int64, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	state := make(map[int64]int, len(graph))
	var cycles []int64

	var visit func(n int64)
	visit = func(n int64) {
		state[n] = visiting
		for _, next := range graph[n] {
			switch state[next] {
			case visiting:
				cycles = append(cycles, next)
			case unvisited:
				visit(next)
			}
		}
		state[n] = done
	}

	for _, n := range nodes {
		if state[n] == unvisited {
			visit(n)
		}
	}
	return cycles
}
