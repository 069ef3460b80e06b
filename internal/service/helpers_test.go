package service

import (
	"context"
	"fmt"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/model"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func requireDomainError(t *testing.T, err error, kind ErrorKind, message string) {
	t.Helper()

	require.Error(t, err)
	domainErr, ok := AsError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	require.Equal(t, kind, domainErr.Kind)
	if message != "" {
		require.Equal(t, message, domainErr.Message)
	}
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []*client.CheckoutSessionRequest
	sessions map[string]*client.CheckoutSession
	err      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*client.CheckoutSession{}}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req *client.CheckoutSessionRequest) (*client.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)

	id := fmt.Sprintf("cs_test_%d", len(g.requests))
	sess := &client.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}
	g.sessions[id] = sess

	out := *sess
	return &out, nil
}

func (g *fakeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*client.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", sessionID)
	}
	out := *sess
	return &out, nil
}

func (g *fakeGateway) markPaid(sessionID, paymentIntentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, ok := g.sessions[sessionID]
	if !ok {
		sess = &client.CheckoutSession{ID: sessionID}
		g.sessions[sessionID] = sess
	}
	sess.Paid = true
	sess.PaymentIntentID = paymentIntentID
}

func (g *fakeGateway) requestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*client.OrderEvent
	err    error
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, event *client.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []*client.Mail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, mail *client.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return m.err
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() *client.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

type fakeIdempotency struct {
	mu   sync.Mutex
	used map[string]bool
}

func (f *fakeIdempotency) Acquire(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.used == nil {
		f.used = map[string]bool{}
	}
	if f.used[key] {
		return false, nil
	}
	f.used[key] = true
	return true, nil
}

func (f *fakeIdempotency) Release(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.used, key)
	return nil
}

type fakeCatalogCache struct {
	items         []*model.Item
	cached        bool
	gets          int
	invalidations int
}

func (c *fakeCatalogCache) GetItems(ctx context.Context) ([]*model.Item, bool, error) {
	c.gets++
	return c.items, c.cached, nil
}

func (c *fakeCatalogCache) SetItems(ctx context.Context, items []*model.Item) error {
	c.items = items
	c.cached = true
	return nil
}

func (c *fakeCatalogCache) InvalidateItems(ctx context.Context) error {
	c.items = nil
	c.cached = false
	c.invalidations++
	return nil
}
