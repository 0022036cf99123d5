package candidates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	pkgpagination "github.com/angelmondragon/recruitdesk-backend/pkg/pagination"
)

var fixedNow = time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC)

type countingMetrics struct {
	masked, shown int
}

func (c *countingMetrics) IncMobileRendered(masked bool) {
	if masked {
		c.masked++
		return
	}
	c.shown++
}

type fixture struct {
	db      *db.Client
	svc     Service
	metrics *countingMetrics
	creator models.Employee
	job     models.ClientJob
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	f := &fixture{db: client, metrics: &countingMetrics{}}

	f.creator = models.Employee{Code: "E1", DisplayName: "Alice", Email: "e1@example.com", PasswordHash: "x", Role: enums.EmployeeRoleExecutive, Active: true}
	require.NoError(t, conn.Create(&f.creator).Error)
	f.job = models.ClientJob{ClientName: "Acme", Title: "Support", Openings: 1, Status: enums.ClientJobStatusOpen}
	require.NoError(t, conn.Create(&f.job).Error)

	engine := followup.NewEngine(followup.Options{Clock: func() time.Time { return fixedNow }, OffsetMinutes: 330, MaskWindowDays: 100})
	svc, err := NewService(NewRepository(conn), client, outbox.NewService(outbox.NewRepository(conn), nil), engine, f.metrics)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seedCandidate(t *testing.T, name, mobile string, createdAt time.Time) models.Candidate {
	t.Helper()
	c := models.Candidate{FullName: name, Mobile: mobile, CreatedBy: f.creator.ID, CreatedAt: createdAt, UpdatedAt: createdAt}
	require.NoError(t, f.db.DB().Create(&c).Error)
	return c
}

func (f *fixture) seedStatus(t *testing.T, candidate models.Candidate, status enums.ProfileStatus) {
	t.Helper()
	jobID := f.job.ID
	require.NoError(t, f.db.DB().Create(&models.ClientJobAssignment{
		CandidateID: candidate.ID, ClientJobID: &jobID, AssignedTo: f.creator.ID, AssignedBy: f.creator.ID, ProfileStatus: status,
	}).Error)
}

func (f *fixture) seedPlacement(t *testing.T, candidate models.Candidate, joining time.Time) {
	t.Helper()
	require.NoError(t, f.db.DB().Create(&models.Placement{
		CandidateID: candidate.ID, ClientJobID: f.job.ID, Mobile: candidate.Mobile, JoiningDate: &joining,
	}).Error)
}

func TestRegisterValidatesAndEmits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{ActorID: f.creator.ID, ActorCode: "E1", FullName: "Ravi", Mobile: "98765"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.Register(ctx, RegisterInput{ActorID: f.creator.ID, ActorCode: "E1", Mobile: "9876543210"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	view, err := f.svc.Register(ctx, RegisterInput{
		ActorID:   f.creator.ID,
		ActorCode: "E1",
		FullName:  " Ravi Kumar ",
		Mobile:    "98765-43210",
		Email:     "Ravi@Example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Ravi Kumar", view.FullName)
	require.Equal(t, "9876543210", view.Mobile)
	require.False(t, view.Masked)
	require.Equal(t, "ravi@example.com", *view.Email)

	var events int64
	require.NoError(t, f.db.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventCandidateRegistered).Count(&events).Error)
	require.Equal(t, int64(1), events)
}

func TestSearchMasksTakenNumbers(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	joined := f.seedCandidate(t, "Joined Recently", "9876543210", base)
	f.seedStatus(t, joined, enums.ProfileStatusJoined)
	f.seedPlacement(t, joined, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	// a second profile sharing the number is masked through the taken set
	duplicate := f.seedCandidate(t, "Same Number", "9876543210", base.Add(time.Minute))

	fresh := f.seedCandidate(t, "Fresh Profile", "9123456780", base.Add(2*time.Minute))

	old := f.seedCandidate(t, "Old Placement", "9000011111", base.Add(3*time.Minute))
	f.seedStatus(t, old, enums.ProfileStatusSelected)
	f.seedPlacement(t, old, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	absconded := f.seedCandidate(t, "Absconded", "9555566666", base.Add(4*time.Minute))
	f.seedStatus(t, absconded, enums.ProfileStatusAbscond)

	res, err := f.svc.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	require.Empty(t, res.Cursor)

	byID := map[uuid.UUID]View{}
	for _, item := range res.Items {
		byID[item.ID] = item
	}
	require.Equal(t, "9xxx5x3xx0", byID[joined.ID].Mobile)
	require.True(t, byID[joined.ID].Masked)
	require.Equal(t, "9xxx5x3xx0", byID[duplicate.ID].Mobile)
	require.Equal(t, "9123456780", byID[fresh.ID].Mobile)
	require.Equal(t, "9000011111", byID[old.ID].Mobile)
	require.Equal(t, "9555566666", byID[absconded.ID].Mobile)
	require.Equal(t, 2, f.metrics.masked)
	require.Equal(t, 3, f.metrics.shown)

	one, err := f.svc.Get(context.Background(), joined.ID)
	require.NoError(t, err)
	require.True(t, one.Masked)
}

func TestOwnSelectedAssignmentLeavesMobileShown(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	selected := f.seedCandidate(t, "Selected Only", "9876501234", base)
	f.seedStatus(t, selected, enums.ProfileStatusSelected)

	view, err := f.svc.Get(context.Background(), selected.ID)
	require.NoError(t, err)
	require.False(t, view.Masked)
	require.Equal(t, "9876501234", view.Mobile)

	other := f.seedCandidate(t, "Second Profile", "9876501234", base.Add(time.Minute))
	res, err := f.svc.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	byID := map[uuid.UUID]View{}
	for _, item := range res.Items {
		byID[item.ID] = item
	}
	require.False(t, byID[selected.ID].Masked)
	require.True(t, byID[other.ID].Masked)
	require.Equal(t, "9xxx5x1xx4", byID[other.ID].Mobile)
}

func TestSearchPagesWithCursor(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	third := f.seedCandidate(t, "Charlie", "9000000003", base)
	second := f.seedCandidate(t, "Bravo", "9000000002", base.Add(time.Hour))
	first := f.seedCandidate(t, "Alpha", "9000000001", base.Add(2*time.Hour))
	f.seedCandidate(t, "Zed Other", "9111111111", base.Add(-time.Hour))
	ctx := context.Background()

	page, err := f.svc.Search(ctx, SearchParams{Query: "90000", Params: paramsOf(2, "")})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, first.ID, page.Items[0].ID)
	require.Equal(t, second.ID, page.Items[1].ID)
	require.NotEmpty(t, page.Cursor)
	firstCursor := page.Cursor

	page, err = f.svc.Search(ctx, SearchParams{Query: "90000", Params: paramsOf(2, page.Cursor)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, third.ID, page.Items[0].ID)
	require.Empty(t, page.Cursor)

	byName, err := f.svc.Search(ctx, SearchParams{Query: "bRAvo"})
	require.NoError(t, err)
	require.Len(t, byName.Items, 1)

	_, err = f.svc.Search(ctx, SearchParams{Params: paramsOf(2, "%%%")})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	// a cursor from the "90000" search cannot resume a different search
	_, err = f.svc.Search(ctx, SearchParams{Query: "9111", Params: paramsOf(2, firstCursor)})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestGetUnknownCandidate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func paramsOf(limit int, cursor string) pkgpagination.Params {
	return pkgpagination.Params{Limit: limit, Cursor: cursor}
}
