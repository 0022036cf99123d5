package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

type lapsedEmitter interface {
	EmitLapsed(ctx context.Context, day time.Time) (int, error)
}

type FollowUpLapsedJobParams struct {
	Logger   *logger.Logger
	Emitter  lapsedEmitter
	Location *time.Location
}

// NewFollowUpLapsedJob builds the job that announces assignments whose
// follow-up date was the previous local day and which are open again.
func NewFollowUpLapsedJob(params FollowUpLapsedJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Emitter == nil {
		return nil, fmt.Errorf("lapsed emitter required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &followUpLapsedJob{logg: params.Logger, emitter: params.Emitter, loc: loc, now: time.Now}, nil
}

type followUpLapsedJob struct {
	logg    *logger.Logger
	emitter lapsedEmitter
	loc     *time.Location
	now     func() time.Time
}

func (j *followUpLapsedJob) Name() string { return "followup-lapsed" }

func (j *followUpLapsedJob) Run(ctx context.Context) error {
	local := j.now().In(j.loc)
	day := time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, j.loc)

	emitted, err := j.emitter.EmitLapsed(ctx, day)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"day":     day.Format("2006-01-02"),
		"emitted": emitted,
	})
	if err != nil {
		return fmt.Errorf("emit lapsed follow-ups: %w", err)
	}
	j.logg.Info(logCtx, "lapsed follow-ups announced")
	return nil
}
