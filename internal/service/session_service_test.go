package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

func TestStartSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPending, session.Status)
	assert.Equal(t, env.order.Version, session.OrderVersion)
	assert.Equal(t, models.SessionKindEdit, session.Kind)
}

func TestStartSessionUnknownOrder(t *testing.T) {
	env := newTestEnv()

	_, err := env.manager.Start(context.Background(), uuid.New(), models.SessionKindEdit)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStartSessionConflictsWithActiveSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)

	// any second session, regardless of kind, is rejected
	_, err = env.manager.Start(ctx, env.order.ID, models.SessionKindReturn)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestStartDraftEditRequiresDraftOrder(t *testing.T) {
	env := newTestEnv()

	_, err := env.manager.Start(context.Background(), env.order.ID, models.SessionKindDraftEdit)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestStartAfterTerminalSessionSucceeds(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)
	require.NoError(t, env.manager.Cancel(ctx, session.ID, false))

	_, err = env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	assert.NoError(t, err)
}

func TestFindActive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	found, err := env.manager.FindActive(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)

	found, err = env.manager.FindActive(ctx, env.order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, session.ID, found.ID)

	// kind filter excludes the edit session
	found, err = env.manager.FindActive(ctx, env.order.ID, models.SessionKindReturn)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRequestFreezesSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)

	preview, err := env.manager.Request(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10800), preview.TotalCents)

	frozen, err := env.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusRequested, frozen.Status)
	assert.NotNil(t, frozen.RequestedAt)

	// requesting again is idempotent
	_, err = env.manager.Request(ctx, session.ID)
	assert.NoError(t, err)

	// but a frozen session rejects further mutations
	_, err = env.edits.AddItem(ctx, session.ID, "variant-poster", 1, nil)
	assert.ErrorIs(t, err, models.ErrNotApplicable)
}

func TestConfirmAppliesPreviewAndBumpsVersion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)

	_, err = env.edits.AddItem(ctx, session.ID, "variant-poster", 2, nil)
	require.NoError(t, err)
	_, err = env.edits.UpdateItem(ctx, session.ID, env.lineA.ID, 0, nil)
	require.NoError(t, err)

	preview, err := env.manager.Confirm(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), preview.SubtotalCents)

	order, err := env.orders.GetByID(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), order.Version)

	items, err := env.orders.GetItemsByOrderID(ctx, env.order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, env.lineB.ID, items[0].ID)
	assert.Equal(t, "variant-poster", items[1].VariantID)

	require.Len(t, env.events.editEvents, 1)
	assert.Equal(t, int64(4), env.events.editEvents[0].OrderVersion)
	assert.Equal(t, preview.TotalCents, env.events.editEvents[0].TotalCents)

	confirmed, err := env.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusConfirmed, confirmed.Status)
}

func TestConfirmStaleVersionConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)

	// the order moved on after the session captured its version
	env.orders.orders[env.order.ID].Version++

	_, err = env.manager.Confirm(ctx, session.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Empty(t, env.events.editEvents)
}

func TestConfirmTerminalSessionNotApplicable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)
	require.NoError(t, env.manager.Cancel(ctx, session.ID, false))

	_, err = env.manager.Confirm(ctx, session.ID)
	assert.ErrorIs(t, err, models.ErrNotApplicable)
}

func TestCancelLeavesOrderUntouched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)
	_, err = env.edits.AddItem(ctx, session.ID, "variant-poster", 5, nil)
	require.NoError(t, err)

	require.NoError(t, env.manager.Cancel(ctx, session.ID, false))

	order, err := env.orders.GetByID(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Equal(t, env.order.Version, order.Version)
	items, err := env.orders.GetItemsByOrderID(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	canceled, err := env.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCanceled, canceled.Status)

	// cancel is terminal too
	err = env.manager.Cancel(ctx, session.ID, false)
	assert.ErrorIs(t, err, models.ErrNotApplicable)
}

func TestCancelWithDecline(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)
	require.NoError(t, env.manager.Cancel(ctx, session.ID, true))

	declined, err := env.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusDeclined, declined.Status)
}

func TestGetPreviewWithAndWithoutSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	preview, err := env.manager.GetPreview(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Nil(t, preview.SessionID)
	assert.Equal(t, int64(10800), preview.TotalCents)

	session, err := env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	require.NoError(t, err)
	_, err = env.edits.AddItem(ctx, session.ID, "variant-poster", 1, nil)
	require.NoError(t, err)

	preview, err = env.manager.GetPreview(ctx, env.order.ID)
	require.NoError(t, err)
	require.NotNil(t, preview.SessionID)
	assert.Equal(t, session.ID, *preview.SessionID)
	assert.Equal(t, int64(12300), preview.TotalCents)
}
