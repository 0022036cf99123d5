package clientjobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/recruitdesk-backend/pkg/pagination"
)

func newService(t *testing.T) Service {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return svc
}

func TestCreateDefaultsToOpenWithOneOpening(t *testing.T) {
	svc := newService(t)

	view, err := svc.Create(context.Background(), CreateInput{ClientName: " Acme ", Title: "Support Engineer", Location: "Pune"})
	require.NoError(t, err)
	require.Equal(t, "Acme", view.ClientName)
	require.Equal(t, enums.ClientJobStatusOpen, view.Status)
	require.Equal(t, 1, view.Openings)
	require.NotNil(t, view.Location)

	_, err = svc.Create(context.Background(), CreateInput{ClientName: "Acme"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestListPagesAndFiltersByStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, title := range []string{"A", "B", "C"} {
		view, err := svc.Create(ctx, CreateInput{ClientName: "Acme", Title: title})
		require.NoError(t, err)
		ids = append(ids, view.ID)
	}
	_, err := svc.SetStatus(ctx, ids[0], "closed")
	require.NoError(t, err)

	first, err := svc.List(ctx, ListParams{Params: pkgpagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Cursor)

	second, err := svc.List(ctx, ListParams{Params: pkgpagination.Params{Limit: 2, Cursor: first.Cursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.Cursor)

	open, err := svc.List(ctx, ListParams{Status: "open"})
	require.NoError(t, err)
	require.Len(t, open.Items, 2)

	_, err = svc.List(ctx, ListParams{Status: "paused"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestSetStatusValidatesInput(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{ClientName: "Acme", Title: "Ops"})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, view.ID, "on_hold")
	require.NoError(t, err)
	require.Equal(t, enums.ClientJobStatusOnHold, updated.Status)

	_, err = svc.SetStatus(ctx, view.ID, "archived")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.SetStatus(ctx, uuid.New(), "open")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
