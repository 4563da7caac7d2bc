package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// CourseCodePattern matches codes such as "CSC101", "MTH 201" or "ENG210A"
	CourseCodePattern = `^[A-Z]{2,4} ?\d{3}[A-Z]?$`

	// Undergraduate and graduate level bounds
	UndergraduateMinLevel = 100
	UndergraduateMaxLevel = 400
	GraduateMinLevel      = 500
	GraduateMaxLevel      = 600
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	CourseCode *regexp.Regexp
}{
	CourseCode: regexp.MustCompile(CourseCodePattern),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.CourseCode.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates a tagged struct and returns an error wrapping ErrValidationFailed
func Struct(obj interface{}) error {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatValidationError(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "nefield":
		return e.Field() + " must differ from " + e.Param()
	case "course_code":
		return e.Field() + " must look like ABC123"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// NumericValidation checks an integer against inclusive bounds
type NumericValidation struct {
	Value int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(value int) *NumericValidation {
	return &NumericValidation{Value: value}
}

// WithMin sets minimum value
func (v *NumericValidation) WithMin(min int) *NumericValidation {
	v.Min = min
	return v
}

// WithMax sets maximum value
func (v *NumericValidation) WithMax(max int) *NumericValidation {
	v.Max = max
	return v
}

// Validate performs validation
func (v *NumericValidation) Validate() bool {
	return v.Value >= v.Min && v.Value <= v.Max
}

// LevelKind reports which degree kind a year level belongs to. Levels are
// multiples of 100.
func LevelKind(level int) models.DegreeKind {
	if level%100 != 0 {
		return models.DegreeUnknown
	}
	if NewNumericValidation(level).WithMin(UndergraduateMinLevel).WithMax(UndergraduateMaxLevel).Validate() {
		return models.DegreeBachelor
	}
	if NewNumericValidation(level).WithMin(GraduateMinLevel).WithMax(GraduateMaxLevel).Validate() {
		return models.DegreeMaster
	}
	return models.DegreeUnknown
}

// DegreeLevel enforces the pairing of a student's level, degree type and program track.
// A zero level or empty degree type means the value was not supplied. A level given
// without a degree type is checked against the program's track.
func DegreeLevel(level int, degreeType string, programTrack models.Track) error {
	kind := models.ClassifyDegree(degreeType)
	if strings.TrimSpace(degreeType) == "" {
		kind = trackKind(programTrack)
	}

	if level != 0 {
		lk := LevelKind(level)
		if lk == models.DegreeUnknown || lk != kind {
			return apperrors.NewDegreeLevelMismatchError(level, degreeType)
		}
	}

	if strings.TrimSpace(degreeType) != "" && programTrack != "" {
		if models.TrackForDegree(degreeType) != programTrack {
			return apperrors.NewCustomError(apperrors.ErrDegreeLevelMismatch,
				fmt.Sprintf("degree type %q does not fit a %s program", degreeType, programTrack)).
				WithCode("DEGREE_TRACK_MISMATCH")
		}
	}

	return nil
}

func trackKind(track models.Track) models.DegreeKind {
	switch track {
	case models.TrackUndergraduate:
		return models.DegreeBachelor
	case models.TrackGraduate:
		return models.DegreeMaster
	}
	return models.DegreeUnknown
}
