package main

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/bootstrap"
	"github.com/yigit/curriculum/internal/config"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

const maxConcurrentChecks = 4

// programReport is the outcome of checking one program
type programReport struct {
	program models.Program
	courses int
	credits int
	err     error
}

// catalogcheck loads the configured catalog, runs the integrity checks and logs the
// shape of every program. It exits non-zero when the catalog cannot be used.
func main() {
	ctx := context.Background()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(config.GetEnv("CONFIG_PATH", "configs/config.yaml"))
	if err != nil {
		os.Exit(1)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, nil, lgr)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize curriculum engine")
		os.Exit(1)
	}
	defer deps.Close()

	programs := deps.Repos.CatalogRepository.Programs()
	reports, checkErr := checkPrograms(deps.EnrollmentService, programs)

	for _, r := range reports {
		if r.err != nil {
			lgr.Error().Err(r.err).Int64("programID", r.program.ProgramID).Msg("Failed to enrich program")
			continue
		}
		lgr.Info().
			Str("program", r.program.ProgramName).
			Str("degreeType", r.program.DegreeType).
			Str("track", string(r.program.Track)).
			Int("courses", r.courses).
			Int("placedCredits", r.credits).
			Int("requiredCredits", r.program.TotalCreditsRequired).
			Msg("Program checked")
	}

	if year, ok := deps.Repos.CatalogRepository.ActiveCatalogYear(); ok {
		lgr.Info().Str("catalogYear", year.Year).Msg("Active catalog year")
	}
	if checkErr != nil {
		lgr.Error().Err(checkErr).Msg("Catalog check failed")
		deps.Close()
		os.Exit(1)
	}
}

// snapshotBuilder builds a snapshot without persisting it
type snapshotBuilder interface {
	BuildSnapshot(studentID string, program models.Program) ([]models.SnapshotRecord, error)
}

// checkPrograms checks every program with bounded concurrency. Every program gets a
// report; the returned error is the first failure.
func checkPrograms(builder snapshotBuilder, programs []models.Program) ([]programReport, error) {
	reports := make([]programReport, len(programs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)
	for i, program := range programs {
		i, program := i, program
		g.Go(func() error {
			reports[i] = checkProgram(builder, program)
			return reports[i].err
		})
	}
	return reports, g.Wait()
}

// checkProgram builds a throwaway snapshot for the program
func checkProgram(builder snapshotBuilder, program models.Program) programReport {
	records, err := builder.BuildSnapshot("catalogcheck", program)
	if err != nil {
		return programReport{program: program, err: err}
	}

	credits := 0
	for _, r := range records {
		credits += r.Credits
	}
	return programReport{program: program, courses: len(records), credits: credits}
}
