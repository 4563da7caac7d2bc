package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
	"github.com/yigit/curriculum/internal/pkg/logger"
	"github.com/yigit/curriculum/internal/pkg/notify"
)

func bundledTables() models.CatalogTables {
	return models.CatalogTables{
		Departments: []models.Department{
			{DepartmentID: 1, DepartmentName: "Computer Science", School: "Computing"},
		},
		CatalogYears: []models.CatalogYear{
			{CatalogYearID: 1, Year: "2023/2024"},
			{CatalogYearID: 2, Year: "2024/2025", IsActive: true},
		},
		Programs: []models.Program{
			{ProgramID: 1, ProgramName: "Computer Science", DegreeType: "B.Sc.", TotalCreditsRequired: 120, CatalogYearID: 2, DepartmentID: 1},
			{ProgramID: 2, ProgramName: "Advanced Computing", DegreeType: "M.Sc.", TotalCreditsRequired: 30, CatalogYearID: 2, DepartmentID: 1},
		},
		Courses: []models.Course{
			{CourseID: 1, CourseCode: "CSC101", CourseName: "Introduction to Computing", Credits: 3, DepartmentID: 1},
			{CourseID: 2, CourseCode: "CSC102", CourseName: "Introduction to Programming", Credits: 3, DepartmentID: 1},
		},
		ProgramCourses: []models.ProgramCourse{
			{ProgramID: 1, CourseID: 1, Core: true, YearRequired: 1, Semester: 1},
			{ProgramID: 1, CourseID: 2, Core: true, YearRequired: 1, Semester: 2},
		},
		Prerequisites: []models.Prerequisite{
			{CourseID: 2, PrerequisiteCourseID: 1},
		},
	}
}

func newRepo(t *testing.T, store kvstore.Store) *CatalogRepository {
	t.Helper()
	r := NewCatalogRepository(store, bundledTables(), logger.Nop())
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return r
}

func TestLoadWithoutOverlays(t *testing.T) {
	r := newRepo(t, kvstore.NewMemory())

	if got := len(r.Courses()); got != 2 {
		t.Fatalf("courses: want=%d got=%d", 2, got)
	}
	if len(r.OverlayErrors()) != 0 {
		t.Fatalf("unexpected overlay errors: %v", r.OverlayErrors())
	}
	for _, p := range r.Programs() {
		if p.Track == "" {
			t.Fatalf("program %d has no track", p.ProgramID)
		}
	}
	if r.Programs()[1].Track != models.TrackGraduate {
		t.Fatalf("M.Sc. track: want=%s got=%s", models.TrackGraduate, r.Programs()[1].Track)
	}

	cy, ok := r.ActiveCatalogYear()
	if !ok || cy.CatalogYearID != 2 {
		t.Fatalf("ActiveCatalogYear: got=%+v ok=%v", cy, ok)
	}
}

func TestOverlayReplacesWholeTable(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	overlay := []models.Course{
		{CourseID: 7, CourseCode: "MTH101", CourseName: "Calculus", Credits: 4, DepartmentID: 1},
	}
	if err := kvstore.SetJSON(ctx, store, string(TableCourses), overlay); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	r := newRepo(t, store)
	courses := r.Courses()
	if len(courses) != 1 || courses[0].CourseCode != "MTH101" {
		t.Fatalf("overlay not used: %+v", courses)
	}
	if len(r.Programs()) != 2 {
		t.Fatalf("other tables must stay bundled: programs=%d", len(r.Programs()))
	}
}

func TestMalformedOverlayFallsBack(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		table   Table
		raw     string
		wantErr error
	}{
		{"not json", TableCourses, `{"oops"`, apperrors.ErrMalformedStorage},
		{"wrong shape", TablePrograms, `{"program_id": 1}`, apperrors.ErrMalformedStorage},
		{"row fails validation", TableCourses, `[{"course_id": 5, "course_code": "bad code", "course_name": "X", "credits": 3, "department_id": 1}]`, apperrors.ErrSchemaViolation},
		{"duplicate key", TableDepartments, `[{"department_id": 1, "department_name": "A", "school": "S"}, {"department_id": 1, "department_name": "B", "school": "S"}]`, apperrors.ErrSchemaViolation},
		{"self prerequisite", TablePrerequisites, `[{"course_id": 1, "prerequisite_course_id": 1}]`, apperrors.ErrSchemaViolation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := kvstore.NewMemory()
			if err := store.Set(ctx, string(tc.table), []byte(tc.raw)); err != nil {
				t.Fatalf("Set: %v", err)
			}

			r := newRepo(t, store)
			tables := r.Tables()
			want := bundledTables()
			if len(tables.Courses) != len(want.Courses) || len(tables.Programs) != len(want.Programs) ||
				len(tables.Departments) != len(want.Departments) || len(tables.Prerequisites) != len(want.Prerequisites) {
				t.Fatalf("bundled tables not used: %+v", tables)
			}

			errs := r.OverlayErrors()
			if !errors.Is(errs[tc.table], tc.wantErr) {
				t.Fatalf("overlay error: want %v got=%v", tc.wantErr, errs[tc.table])
			}
		})
	}
}

func TestReplaceTable(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	r := newRepo(t, store)

	rows := []models.Department{
		{DepartmentID: 1, DepartmentName: "Computer Science", School: "Computing"},
		{DepartmentID: 9, DepartmentName: "Physics", School: "Physical Sciences"},
	}
	if err := r.ReplaceDepartments(ctx, rows); err != nil {
		t.Fatalf("ReplaceDepartments: %v", err)
	}
	if got := len(r.Departments()); got != 2 {
		t.Fatalf("departments: want=%d got=%d", 2, got)
	}

	// a second repository over the same store sees the overlay
	other := newRepo(t, store)
	if got := len(other.Departments()); got != 2 {
		t.Fatalf("persisted departments: want=%d got=%d", 2, got)
	}

	bad := []models.Program{{ProgramID: 3, ProgramName: "", DegreeType: "B.A.", TotalCreditsRequired: 10, CatalogYearID: 1, DepartmentID: 1}}
	if err := r.ReplacePrograms(ctx, bad); !errors.Is(err, apperrors.ErrSchemaViolation) {
		t.Fatalf("invalid rows: want ErrSchemaViolation got=%v", err)
	}
	if got := len(r.Programs()); got != 2 {
		t.Fatalf("rejected replace changed programs: got=%d", got)
	}
	if _, found, _ := store.Get(ctx, string(TablePrograms)); found {
		t.Fatalf("rejected replace was stored")
	}

	if err := r.ReplacePrograms(ctx, []models.Program{{ProgramID: 3, ProgramName: "Finance", DegreeType: "MBA", TotalCreditsRequired: 45, CatalogYearID: 2, DepartmentID: 1}}); err != nil {
		t.Fatalf("ReplacePrograms: %v", err)
	}
	if p := r.Programs(); len(p) != 1 || p[0].Track != models.TrackGraduate {
		t.Fatalf("replaced programs: got=%+v", p)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	r := newRepo(t, kvstore.NewMemory())

	courses := r.Courses()
	courses[0].CourseName = "changed"
	if r.Courses()[0].CourseName == "changed" {
		t.Fatalf("Courses exposes internal rows")
	}

	conc := "Systems"
	pcs := r.ProgramCourses()
	pcs[0].Concentration = &conc
	if r.ProgramCourses()[0].Concentration != nil {
		t.Fatalf("ProgramCourses exposes internal rows")
	}
}

func TestRefreshUnknownTable(t *testing.T) {
	r := newRepo(t, kvstore.NewMemory())
	if err := r.Refresh(context.Background(), Table("catalog_rooms")); !errors.Is(err, apperrors.ErrUnknownTable) {
		t.Fatalf("want ErrUnknownTable got=%v", err)
	}
}

func TestRefreshCancelledContext(t *testing.T) {
	r := newRepo(t, kvstore.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Refresh(ctx, TableCourses); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled got=%v", err)
	}
}

// unavailableStore fails every read once down is set
type unavailableStore struct {
	*kvstore.Memory
	down bool
}

var errBackendDown = errors.New("backend unavailable")

func (s *unavailableStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.down {
		return nil, false, errBackendDown
	}
	return s.Memory.Get(ctx, key)
}

func TestRefreshKeepsTableWhenStorageFails(t *testing.T) {
	ctx := context.Background()
	store := &unavailableStore{Memory: kvstore.NewMemory()}
	r := newRepo(t, store)

	overlay := []models.Course{
		{CourseID: 7, CourseCode: "MTH101", CourseName: "Calculus", Credits: 4, DepartmentID: 1},
		{CourseID: 8, CourseCode: "MTH102", CourseName: "Linear Algebra", Credits: 3, DepartmentID: 1},
	}
	if err := r.ReplaceCourses(ctx, overlay); err != nil {
		t.Fatalf("ReplaceCourses: %v", err)
	}

	store.down = true
	if err := r.Refresh(ctx, TableCourses); !errors.Is(err, errBackendDown) {
		t.Fatalf("want errBackendDown got=%v", err)
	}
	if c := r.Courses(); len(c) != 2 || c[0].CourseID != 7 {
		t.Fatalf("overlay discarded on read failure: %+v", c)
	}
	if len(r.OverlayErrors()) != 0 {
		t.Fatalf("read failure recorded as bad overlay: %v", r.OverlayErrors())
	}

	if err := r.Refresh(ctx, TablePrograms); err == nil {
		t.Fatalf("want error refreshing programs")
	}
	for _, p := range r.Programs() {
		if p.Track == "" {
			t.Fatalf("program %d lost its track", p.ProgramID)
		}
	}
}

func TestWatchRefreshesChangedTable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub(logger.Nop())
	defer hub.Close()
	store := kvstore.NewObserved(kvstore.NewMemory(), hub)
	r := newRepo(t, store)

	changes, unsubscribe := hub.Subscribe()
	defer unsubscribe()
	go r.Watch(ctx, changes)

	overlay := []models.Course{{CourseID: 7, CourseCode: "MTH101", CourseName: "Calculus", Credits: 4, DepartmentID: 1}}
	if err := kvstore.SetJSON(ctx, store, string(TableCourses), overlay); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if c := r.Courses(); len(c) == 1 && c[0].CourseID == 7 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watcher did not pick up overlay: %+v", r.Courses())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := store.Delete(ctx, string(TableCourses)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for len(r.Courses()) != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher did not restore bundled courses: %+v", r.Courses())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestIsCatalogTable(t *testing.T) {
	for _, table := range AllTables() {
		if !IsCatalogTable(string(table)) {
			t.Fatalf("%s not recognised", table)
		}
	}
	if IsCatalogTable(SnapshotKey("s1")) {
		t.Fatalf("snapshot key treated as catalog table")
	}
}
