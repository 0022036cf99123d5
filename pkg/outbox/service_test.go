package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox/payloads"
)

func TestEmitStoresEnvelope(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)

	assignmentID := uuid.New()
	actor := &ActorRef{EmployeeID: uuid.New(), Code: "E9", Role: enums.EmployeeRoleManager}
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventAssignmentReassigned,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   assignmentID,
			Actor:         actor,
			Data: payloads.AssignmentReassignedEvent{
				AssignmentID: assignmentID,
				ToExecutive:  "E2",
			},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, assignmentID, rows[0].AggregateID)
	require.Nil(t, rows[0].PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal([]byte(rows[0].Payload), &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.Equal(t, "E9", envelope.Actor.Code)

	var data payloads.AssignmentReassignedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, "E2", data.ToExecutive)
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	client := dbtest.Open(t)
	svc := NewService(NewRepository(client.DB()), nil)

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventFeedbackRecorded,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   uuid.New(),
			Data:          payloads.FeedbackRecordedEvent{Remarks: "Call back"},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEmitRejectsUnknownEventAndMissingTx(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))

	client := dbtest.Open(t)
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:   enums.OutboxEventType("order_created"),
			AggregateID: uuid.New(),
		})
	})
	require.Error(t, err)
}

func TestEmitIfNotExistsSince(t *testing.T) {
	client := dbtest.Open(t)
	svc := NewService(NewRepository(client.DB()), nil)

	event := DomainEvent{
		EventType:     enums.EventFollowUpLapsed,
		AggregateType: enums.AggregateAssignment,
		AggregateID:   uuid.New(),
		Data:          payloads.FollowUpLapsedEvent{NextFollowUpDate: "2024-05-06"},
	}
	since := time.Now().Add(-time.Hour)

	emit := func() bool {
		var written bool
		require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
			var err error
			written, err = svc.EmitIfNotExistsSince(context.Background(), tx, event, since)
			return err
		}))
		return written
	}

	require.True(t, emit())
	require.False(t, emit())

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	db := client.DB()

	first := models.OutboxEvent{
		EventType:     enums.EventAssignmentCreated,
		AggregateType: enums.AggregateAssignment,
		AggregateID:   uuid.New(),
		Payload:       `{"version":1}`,
	}
	second := first
	second.AggregateID = uuid.New()
	require.NoError(t, repo.Insert(db, first))
	require.NoError(t, repo.Insert(db, second))

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(db, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(db, rows[1].ID, errors.New("unavailable")))

	rows, err = repo.FetchUnpublishedForPublish(db, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].AttemptCount)
	require.NotNil(t, rows[0].LastError)
	require.Equal(t, "unavailable", *rows[0].LastError)

	require.NoError(t, repo.MarkTerminalTx(db, rows[0].ID, errors.New("gone"), 3))
	rows, err = repo.FetchUnpublishedForPublish(db, 10, 3)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestRepositoryDeletesPublishedInBatches(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	db := client.DB()

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		published := old.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Insert(db, models.OutboxEvent{
			ID:            uuid.New(),
			EventType:     enums.EventFeedbackRecorded,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   uuid.New(),
			Payload:       `{"version":1}`,
			PublishedAt:   &published,
		}))
	}
	pending := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventFollowUpLapsed,
		AggregateType: enums.AggregateAssignment,
		AggregateID:   uuid.New(),
		Payload:       `{"version":1}`,
	}
	require.NoError(t, repo.Insert(db, pending))

	cutoff := old.Add(24 * time.Hour)
	deleted, err := repo.DeletePublishedBefore(db, cutoff, 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
	deleted, err = repo.DeletePublishedBefore(db, cutoff, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
	deleted, err = repo.DeletePublishedBefore(db, cutoff, 2)
	require.NoError(t, err)
	require.Zero(t, deleted)

	var left []models.OutboxEvent
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	require.Equal(t, pending.ID, left[0].ID)

	_, err = repo.DeletePublishedBefore(db, cutoff, 0)
	require.Error(t, err)
}
