package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

func startExchange(t *testing.T, env *testEnv) *models.Exchange {
	t.Helper()
	ex, err := env.exchangeSvc.CreateExchange(context.Background(), env.order.ID)
	require.NoError(t, err)
	return ex
}

func TestCreateExchange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	ex := startExchange(t, env)
	assert.Equal(t, models.ExchangeStatusPending, ex.Status)

	session, err := env.sessions.GetByID(ctx, ex.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionKindExchange, session.Kind)

	// no inbound leg until items are added
	returnID, err := env.exchangeSvc.ResolveExchangeReturnID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Nil(t, returnID)
}

func TestAddInboundItemsCreatesLinkedReturn(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineA.ID, Quantity: 1, ReasonID: "wrong-size"},
	})
	require.NoError(t, err)

	returnID, err := env.exchangeSvc.ResolveExchangeReturnID(ctx, ex.ID)
	require.NoError(t, err)
	require.NotNil(t, returnID)

	ret, err := env.returns.GetByID(ctx, *returnID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusItemsRequested, ret.Status)
	assert.Equal(t, "loc-warehouse-1", ret.LocationID)
	require.NotNil(t, ret.ExchangeID)
	assert.Equal(t, ex.ID, *ret.ExchangeID)

	// the return shares the exchange's session
	assert.Equal(t, ex.SessionID, ret.SessionID)

	// a second call extends the same return instead of creating another
	_, err = env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineB.ID, Quantity: 1},
	})
	require.NoError(t, err)
	ret, err = env.returns.GetByID(ctx, *returnID)
	require.NoError(t, err)
	assert.Len(t, ret.Items, 2)
}

func TestAddOutboundItems(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	preview, err := env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-poster", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, preview.Items, 3)
	assert.Equal(t, "Wall Poster", preview.Items[2].Title)
	assert.Equal(t, int64(3000), preview.Items[2].TotalCents)

	_, err = env.exchangeSvc.AddOutboundItems(ctx, ex.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-poster", Quantity: 0},
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAddOutboundItemsStockGate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-rare", Quantity: 1},
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	preview, err := env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-rare", Quantity: 1, AllowBackorder: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Limited Print", preview.Items[2].Title)
}

func TestAddOutboundItemsFetchesVariantOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)
	before := env.catalog.lookups["variant-poster"]

	_, err := env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-poster", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.catalog.lookups["variant-poster"]-before)
}

func TestInboundShippingRequiresInboundItems(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-return", nil, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLegShippingReplaceSemantics(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineA.ID, Quantity: 1},
	})
	require.NoError(t, err)

	preview, err := env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-return", nil, nil)
	require.NoError(t, err)
	inbound := FindShippingForLeg(preview, ex.ID, models.LegInbound)
	require.NotNil(t, inbound)
	assert.Equal(t, int64(500), inbound.AmountCents)

	// same option again patches the amount in place
	preview, err = env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-return", int64Ptr(300), nil)
	require.NoError(t, err)
	inbound = FindShippingForLeg(preview, ex.ID, models.LegInbound)
	require.NotNil(t, inbound)
	assert.Equal(t, int64(300), inbound.AmountCents)

	// a different option replaces the action instead of stacking
	preview, err = env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-express", nil, nil)
	require.NoError(t, err)
	inbound = FindShippingForLeg(preview, ex.ID, models.LegInbound)
	require.NotNil(t, inbound)
	assert.Equal(t, "so-express", inbound.ShippingOptionID)

	actions, err := env.sessions.GetActions(ctx, ex.SessionID)
	require.NoError(t, err)
	legActions := 0
	for i := range actions {
		if actions[i].IsLeg(ex.ID, models.LegInbound) {
			legActions++
		}
	}
	assert.Equal(t, 1, legActions)
}

func TestLegsAreIndependent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineA.ID, Quantity: 1},
	})
	require.NoError(t, err)

	_, err = env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-return", nil, nil)
	require.NoError(t, err)
	preview, err := env.exchangeSvc.SetOutboundShipping(ctx, ex.ID, "so-express", nil)
	require.NoError(t, err)

	inbound := FindShippingForLeg(preview, ex.ID, models.LegInbound)
	outbound := FindShippingForLeg(preview, ex.ID, models.LegOutbound)
	require.NotNil(t, inbound)
	require.NotNil(t, outbound)
	assert.Equal(t, "so-return", inbound.ShippingOptionID)
	assert.Equal(t, "so-express", outbound.ShippingOptionID)

	// replacing the outbound leg leaves the inbound leg alone
	preview, err = env.exchangeSvc.SetOutboundShipping(ctx, ex.ID, "so-standard", nil)
	require.NoError(t, err)
	inbound = FindShippingForLeg(preview, ex.ID, models.LegInbound)
	require.NotNil(t, inbound)
	assert.Equal(t, "so-return", inbound.ShippingOptionID)
}

func TestInboundShippingMergesTracking(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineA.ID, Quantity: 1},
	})
	require.NoError(t, err)

	_, err = env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-return", nil, &models.TrackingMeta{
		TrackingNumber: "TRK-123",
		TrackingURL:    "https://carrier.test/TRK-123",
	})
	require.NoError(t, err)

	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRK-123", got.TrackingMeta[models.TrackingNumberKey])

	// an empty field removes its key
	_, err = env.exchangeSvc.SetInboundShipping(ctx, ex.ID, "so-return", nil, &models.TrackingMeta{
		TrackingNumber: "TRK-456",
	})
	require.NoError(t, err)
	got, err = env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRK-456", got.TrackingMeta[models.TrackingNumberKey])
	_, ok := got.TrackingMeta[models.TrackingURLKey]
	assert.False(t, ok)
}

func TestAttachInboundLabel(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AttachInboundLabel(ctx, ex.ID, "label.pdf", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	url, err := env.exchangeSvc.AttachInboundLabel(ctx, ex.ID, "label.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "https://files.local/labels/label.pdf", url)

	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.TrackingMeta[models.TrackingLabelURLKey])
}

func TestRequestExchangeConfirmsLinkedReturn(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineA.ID, Quantity: 1},
	})
	require.NoError(t, err)
	_, err = env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-poster", Quantity: 1},
	})
	require.NoError(t, err)

	_, err = env.exchangeSvc.RequestExchange(ctx, ex.ID)
	require.NoError(t, err)

	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeStatusRequested, got.Status)

	ret, err := env.returns.GetByExchangeID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusRequestConfirmed, ret.Status)

	session, err := env.sessions.GetByID(ctx, ex.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusRequested, session.Status)

	// a requested exchange no longer accepts changes
	_, err = env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-tee", Quantity: 1},
	})
	assert.ErrorIs(t, err, models.ErrNotApplicable)
}

func TestTryCancelRequestOnlyWhenRequested(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	err := env.exchangeSvc.TryCancelRequest(ctx, ex.ID)
	assert.ErrorIs(t, err, models.ErrNotApplicable)

	_, err = env.exchangeSvc.RequestExchange(ctx, ex.ID)
	require.NoError(t, err)
	require.NoError(t, env.exchangeSvc.TryCancelRequest(ctx, ex.ID))

	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeStatusCanceled, got.Status)
}

func TestConfirmedExchangeSessionIsTerminal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddOutboundItems(ctx, ex.ID, []models.OutboundItemInput{
		{VariantID: "variant-poster", Quantity: 1},
	})
	require.NoError(t, err)
	_, err = env.exchangeSvc.RequestExchange(ctx, ex.ID)
	require.NoError(t, err)

	// confirming the session resolves the exchange with it
	_, err = env.manager.Confirm(ctx, ex.SessionID)
	require.NoError(t, err)

	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeStatusConfirmed, got.Status)

	// the applied exchange cannot be canceled, by either path
	err = env.exchangeSvc.CancelExchange(ctx, ex.ID)
	assert.ErrorIs(t, err, models.ErrNotApplicable)

	got, err = env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeStatusConfirmed, got.Status)
	session, err := env.sessions.GetByID(ctx, ex.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusConfirmed, session.Status)
}

func TestCancelExchangeAfterSessionCanceledOutOfBand(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	// the session was canceled through the session endpoint directly
	require.NoError(t, env.manager.Cancel(ctx, ex.SessionID, false))

	// the exchange record can still be closed
	require.NoError(t, env.exchangeSvc.CancelExchange(ctx, ex.ID))
	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeStatusCanceled, got.Status)
}

func TestCancelExchangeFallsBackToHardCancel(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ex := startExchange(t, env)

	_, err := env.exchangeSvc.AddInboundItems(ctx, ex.ID, "loc-warehouse-1", []models.RequestItemsInput{
		{LineItemID: env.lineA.ID, Quantity: 1},
	})
	require.NoError(t, err)

	// still pending: the request-cancel path reports not-applicable and
	// the hard cancel takes over
	require.NoError(t, env.exchangeSvc.CancelExchange(ctx, ex.ID))

	got, err := env.exchangeSvc.Get(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeStatusCanceled, got.Status)
	assert.NotNil(t, got.CanceledAt)

	// the linked return and the session are swept along
	ret, err := env.returns.GetByExchangeID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusCanceled, ret.Status)
	session, err := env.sessions.GetByID(ctx, ex.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCanceled, session.Status)

	// canceling again is not-applicable either way
	err = env.exchangeSvc.CancelExchange(ctx, ex.ID)
	assert.ErrorIs(t, err, models.ErrNotApplicable)

	// the order is free again
	_, err = env.manager.Start(ctx, env.order.ID, models.SessionKindEdit)
	assert.NoError(t, err)
}
