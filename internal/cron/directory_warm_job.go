package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

type directoryWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// NewDirectoryWarmJob reloads the employee directory so the shared cache is
// fresh when the day's traffic starts.
func NewDirectoryWarmJob(logg *logger.Logger, warmer directoryWarmer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if warmer == nil {
		return nil, fmt.Errorf("directory required")
	}
	return &directoryWarmJob{logg: logg, warmer: warmer}, nil
}

type directoryWarmJob struct {
	logg   *logger.Logger
	warmer directoryWarmer
}

func (j *directoryWarmJob) Name() string { return "directory-warm" }

func (j *directoryWarmJob) Run(ctx context.Context) error {
	n, err := j.warmer.Warm(ctx)
	if err != nil {
		return fmt.Errorf("warm directory: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "employees", n), "employee directory warmed")
	return nil
}
