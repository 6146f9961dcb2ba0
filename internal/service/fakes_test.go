package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// In-memory stores backing the service tests. They mirror the
// repositories' observable behavior, including the single-active-session
// constraint and the version check at confirm time.

type fakeOrderStore struct {
	orders   map[uuid.UUID]*models.Order
	items    map[uuid.UUID][]models.OrderItem
	shipping map[uuid.UUID][]models.ShippingMethod
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders:   map[uuid.UUID]*models.Order{},
		items:    map[uuid.UUID][]models.OrderItem{},
		shipping: map[uuid.UUID][]models.ShippingMethod{},
	}
}

func (s *fakeOrderStore) Create(ctx context.Context, order *models.Order, items []models.OrderItem, shipping []models.ShippingMethod) error {
	if _, ok := s.orders[order.ID]; ok {
		return nil
	}
	o := *order
	s.orders[order.ID] = &o
	s.items[order.ID] = append([]models.OrderItem(nil), items...)
	s.shipping[order.ID] = append([]models.ShippingMethod(nil), shipping...)
	return nil
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, models.NewNotFoundError("order")
	}
	o := *order
	return &o, nil
}

func (s *fakeOrderStore) GetItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), s.items[orderID]...), nil
}

func (s *fakeOrderStore) GetShippingByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.ShippingMethod, error) {
	return append([]models.ShippingMethod(nil), s.shipping[orderID]...), nil
}

type fakeSessionStore struct {
	orders   *fakeOrderStore
	sessions map[uuid.UUID]*models.ChangeSession
	actions  map[uuid.UUID][]models.Action
}

func newFakeSessionStore(orders *fakeOrderStore) *fakeSessionStore {
	return &fakeSessionStore{
		orders:   orders,
		sessions: map[uuid.UUID]*models.ChangeSession{},
		actions:  map[uuid.UUID][]models.Action{},
	}
}

func (s *fakeSessionStore) Create(ctx context.Context, session *models.ChangeSession) error {
	for _, existing := range s.sessions {
		if existing.OrderID == session.OrderID && !existing.Status.Terminal() {
			return models.NewConflictError("an active change session already exists for this order")
		}
	}
	sess := *session
	s.sessions[session.ID] = &sess
	return nil
}

func (s *fakeSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ChangeSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, models.NewNotFoundError("change session")
	}
	sess := *session
	sess.Actions = append([]models.Action(nil), s.actions[id]...)
	return &sess, nil
}

func (s *fakeSessionStore) ListActiveByOrder(ctx context.Context, orderID uuid.UUID, kinds ...models.SessionKind) ([]models.ChangeSession, error) {
	var out []models.ChangeSession
	for _, session := range s.sessions {
		if session.OrderID != orderID || session.Status.Terminal() {
			continue
		}
		if len(kinds) > 0 {
			match := false
			for _, k := range kinds {
				if session.Kind == k {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		sess := *session
		sess.Actions = append([]models.Action(nil), s.actions[session.ID]...)
		out = append(out, sess)
	}
	return out, nil
}

func (s *fakeSessionStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ChangeSession, error) {
	var out []models.ChangeSession
	for _, session := range s.sessions {
		if session.OrderID != orderID {
			continue
		}
		sess := *session
		sess.Actions = append([]models.Action(nil), s.actions[session.ID]...)
		out = append(out, sess)
	}
	return out, nil
}

func (s *fakeSessionStore) MarkRequested(ctx context.Context, id uuid.UUID, at time.Time) error {
	session, ok := s.sessions[id]
	if !ok || session.Status != models.SessionStatusPending {
		return models.NewNotApplicableError("session is not pending")
	}
	session.Status = models.SessionStatusRequested
	session.RequestedAt = &at
	return nil
}

func (s *fakeSessionStore) MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	session, ok := s.sessions[id]
	if !ok || session.Status.Terminal() {
		return models.NewNotApplicableError("session already resolved")
	}
	session.Status = models.SessionStatusConfirmed
	session.ConfirmedAt = &at
	return nil
}

func (s *fakeSessionStore) MarkCanceled(ctx context.Context, id uuid.UUID, status models.SessionStatus, at time.Time) error {
	session, ok := s.sessions[id]
	if !ok || session.Status.Terminal() {
		return models.NewNotApplicableError("session already resolved")
	}
	session.Status = status
	session.CanceledAt = &at
	return nil
}

func (s *fakeSessionStore) GetActions(ctx context.Context, sessionID uuid.UUID) ([]models.Action, error) {
	return append([]models.Action(nil), s.actions[sessionID]...), nil
}

func (s *fakeSessionStore) AppendAction(ctx context.Context, action *models.Action) error {
	action.Ordering = len(s.actions[action.SessionID]) + 1
	s.actions[action.SessionID] = append(s.actions[action.SessionID], *action)
	return nil
}

func (s *fakeSessionStore) GetAction(ctx context.Context, actionID uuid.UUID) (*models.Action, error) {
	for _, actions := range s.actions {
		for _, action := range actions {
			if action.ID == actionID {
				a := action
				return &a, nil
			}
		}
	}
	return nil, models.NewNotFoundError("action")
}

func (s *fakeSessionStore) UpdateAction(ctx context.Context, action *models.Action) error {
	actions := s.actions[action.SessionID]
	for i := range actions {
		if actions[i].ID == action.ID {
			actions[i].ReferenceID = action.ReferenceID
			actions[i].Quantity = action.Quantity
			actions[i].UnitPriceCents = action.UnitPriceCents
			actions[i].CustomAmountCents = action.CustomAmountCents
			actions[i].InternalNote = action.InternalNote
			return nil
		}
	}
	return models.NewNotFoundError("action")
}

func (s *fakeSessionStore) DeleteAction(ctx context.Context, actionID uuid.UUID) error {
	for sessionID, actions := range s.actions {
		for i := range actions {
			if actions[i].ID == actionID {
				s.actions[sessionID] = append(actions[:i], actions[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (s *fakeSessionStore) Confirm(ctx context.Context, session *models.ChangeSession, items []models.OrderItem, shipping []models.ShippingMethod, confirmedAt time.Time) error {
	order, ok := s.orders.orders[session.OrderID]
	if !ok {
		return models.NewNotFoundError("order")
	}
	if order.Version != session.OrderVersion {
		return models.NewConflictError("order changed since the session started")
	}
	if s.sessions[session.ID].Status.Terminal() {
		return models.NewNotApplicableError("session already resolved")
	}

	s.orders.items[session.OrderID] = append([]models.OrderItem(nil), items...)
	s.orders.shipping[session.OrderID] = append([]models.ShippingMethod(nil), shipping...)
	order.Version++
	order.UpdatedAt = confirmedAt

	stored := s.sessions[session.ID]
	stored.Status = models.SessionStatusConfirmed
	stored.ConfirmedAt = &confirmedAt
	return nil
}

type fakeReturnStore struct {
	returns map[uuid.UUID]*models.Return
	items   map[uuid.UUID][]models.ReturnItem
}

func newFakeReturnStore() *fakeReturnStore {
	return &fakeReturnStore{
		returns: map[uuid.UUID]*models.Return{},
		items:   map[uuid.UUID][]models.ReturnItem{},
	}
}

func (s *fakeReturnStore) Create(ctx context.Context, ret *models.Return) error {
	r := *ret
	s.returns[ret.ID] = &r
	return nil
}

func (s *fakeReturnStore) get(id uuid.UUID) (*models.Return, error) {
	ret, ok := s.returns[id]
	if !ok {
		return nil, models.NewNotFoundError("return")
	}
	r := *ret
	r.Items = append([]models.ReturnItem(nil), s.items[id]...)
	return &r, nil
}

func (s *fakeReturnStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Return, error) {
	return s.get(id)
}

func (s *fakeReturnStore) GetByExchangeID(ctx context.Context, exchangeID uuid.UUID) (*models.Return, error) {
	for id, ret := range s.returns {
		if ret.ExchangeID != nil && *ret.ExchangeID == exchangeID {
			return s.get(id)
		}
	}
	return nil, models.NewNotFoundError("return")
}

func (s *fakeReturnStore) UpsertRequestedItems(ctx context.Context, returnID uuid.UUID, items []models.ReturnItem) error {
	for _, item := range items {
		found := false
		for i := range s.items[returnID] {
			if s.items[returnID][i].LineItemID == item.LineItemID {
				s.items[returnID][i].RequestedQuantity += item.RequestedQuantity
				s.items[returnID][i].ReasonID = item.ReasonID
				s.items[returnID][i].Note = item.Note
				found = true
				break
			}
		}
		if !found {
			s.items[returnID] = append(s.items[returnID], item)
		}
	}
	return nil
}

func (s *fakeReturnStore) AddReceivedQuantities(ctx context.Context, returnID uuid.UUID, items []models.ReceiveItemsInput) error {
	for _, item := range items {
		found := false
		for i := range s.items[returnID] {
			if s.items[returnID][i].LineItemID == item.LineItemID {
				s.items[returnID][i].ReceivedQuantity += item.Quantity
				found = true
				break
			}
		}
		if !found {
			s.items[returnID] = append(s.items[returnID], models.ReturnItem{
				ReturnID:         returnID,
				LineItemID:       item.LineItemID,
				ReceivedQuantity: item.Quantity,
			})
		}
	}
	return nil
}

func (s *fakeReturnStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReturnStatus, at time.Time) error {
	ret, ok := s.returns[id]
	if !ok {
		return models.NewNotFoundError("return")
	}
	ret.Status = status
	ret.UpdatedAt = at
	switch status {
	case models.ReturnStatusCanceled:
		ret.CanceledAt = &at
	case models.ReturnStatusReceived:
		ret.ReceivedAt = &at
	}
	return nil
}

type fakeExchangeStore struct {
	exchanges map[uuid.UUID]*models.Exchange
}

func newFakeExchangeStore() *fakeExchangeStore {
	return &fakeExchangeStore{exchanges: map[uuid.UUID]*models.Exchange{}}
}

func (s *fakeExchangeStore) Create(ctx context.Context, ex *models.Exchange) error {
	e := *ex
	s.exchanges[ex.ID] = &e
	return nil
}

func (s *fakeExchangeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	ex, ok := s.exchanges[id]
	if !ok {
		return nil, models.NewNotFoundError("exchange")
	}
	return s.copyOf(ex), nil
}

func (s *fakeExchangeStore) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Exchange, error) {
	for _, ex := range s.exchanges {
		if ex.SessionID == sessionID {
			return s.copyOf(ex), nil
		}
	}
	return nil, models.NewNotFoundError("exchange")
}

func (s *fakeExchangeStore) copyOf(ex *models.Exchange) *models.Exchange {
	e := *ex
	e.TrackingMeta = map[string]string{}
	for k, v := range ex.TrackingMeta {
		e.TrackingMeta[k] = v
	}
	return &e
}

func (s *fakeExchangeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExchangeStatus, at time.Time) error {
	ex, ok := s.exchanges[id]
	if !ok {
		return models.NewNotFoundError("exchange")
	}
	ex.Status = status
	ex.UpdatedAt = at
	if status == models.ExchangeStatusCanceled {
		ex.CanceledAt = &at
	}
	return nil
}

func (s *fakeExchangeStore) UpdateTrackingMeta(ctx context.Context, id uuid.UUID, meta map[string]string) error {
	ex, ok := s.exchanges[id]
	if !ok {
		return models.NewNotFoundError("exchange")
	}
	ex.TrackingMeta = meta
	return nil
}

type fakePublisher struct {
	editEvents   []models.EditConfirmedEvent
	returnEvents []models.ReturnReceivedEvent
}

func (p *fakePublisher) PublishEditConfirmed(ctx context.Context, event models.EditConfirmedEvent) error {
	p.editEvents = append(p.editEvents, event)
	return nil
}

func (p *fakePublisher) PublishReturnReceived(ctx context.Context, event models.ReturnReceivedEvent) error {
	p.returnEvents = append(p.returnEvents, event)
	return nil
}

type fakeCatalog struct {
	variants map[string]Variant
	lookups  map[string]int
}

func (c *fakeCatalog) GetVariant(ctx context.Context, variantID string) (*Variant, error) {
	if c.lookups == nil {
		c.lookups = map[string]int{}
	}
	c.lookups[variantID]++
	variant, ok := c.variants[variantID]
	if !ok {
		return nil, models.NewNotFoundError("variant")
	}
	return &variant, nil
}

func (c *fakeCatalog) SearchVariants(ctx context.Context, query string) ([]Variant, error) {
	var out []Variant
	for _, v := range c.variants {
		if strings.Contains(strings.ToLower(v.Title), strings.ToLower(query)) {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeShippingCatalog struct {
	options map[string]ShippingOption
}

func (c *fakeShippingCatalog) GetOption(ctx context.Context, optionID string) (*ShippingOption, error) {
	option, ok := c.options[optionID]
	if !ok {
		return nil, models.NewNotFoundError("shipping option")
	}
	return &option, nil
}

func (c *fakeShippingCatalog) ListOptions(ctx context.Context) ([]ShippingOption, error) {
	var out []ShippingOption
	for _, o := range c.options {
		out = append(out, o)
	}
	return out, nil
}

type fakeLabelUploader struct {
	uploads []string
}

func (u *fakeLabelUploader) UploadLabel(ctx context.Context, filename string, data []byte) (string, error) {
	u.uploads = append(u.uploads, filename)
	return "https://files.local/labels/" + filename, nil
}
