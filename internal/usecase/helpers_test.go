package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"shop/internal/domain/model"
	"shop/internal/events"
	"shop/internal/infra/memory"
	"shop/internal/logging"
	"shop/internal/metrics"
	"shop/internal/txref"
	"shop/internal/usecase"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// 決められた順にtx_refを返す
type seqGenerator struct {
	mu   sync.Mutex
	refs []string
	next int
}

func (g *seqGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next >= len(g.refs) {
		return "", errors.New("generator exhausted")
	}
	ref := g.refs[g.next]
	g.next++
	return ref, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *capturePublisher) Publish(ctx context.Context, ev events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

type fixture struct {
	store     *memory.Store
	metrics   *metrics.Metrics
	publisher *capturePublisher
	category  model.Category
	buyer     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	cat := s.AddCategory(model.Category{Name: "Tools", Slug: "tools"})
	buyer := s.AddUser(model.User{Email: "buyer@example.com", FirstName: "Aru", IsActive: true, AccountType: model.AccountTypeBuyer})
	return &fixture{
		store:     s,
		metrics:   metrics.New(),
		publisher: &capturePublisher{},
		category:  cat,
		buyer:     &buyer,
	}
}

func (f *fixture) newUser(email string) *model.User {
	u := f.store.AddUser(model.User{Email: email, IsActive: true, AccountType: model.AccountTypeBuyer})
	return &u
}

func (f *fixture) product(t *testing.T, slug string, price string, stock int64) model.Product {
	t.Helper()
	return f.store.AddProduct(model.Product{
		CategoryID:   f.category.ID,
		Name:         slug,
		Slug:         slug,
		PriceCurrent: decimal.RequireFromString(price),
		InStock:      stock,
	})
}

func (f *fixture) stock(t *testing.T, p model.Product) int64 {
	t.Helper()
	cur, ok := f.store.Product(p.ID)
	require.True(t, ok)
	return cur.InStock
}

func (f *fixture) cart() *usecase.CartUsecase {
	return usecase.NewCartUsecase(f.store, f.store.CartLines())
}

func (f *fixture) checkout(gen txref.Generator, requireShipping bool) *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(f.store, gen, f.publisher, f.metrics, quietLogger(), requireShipping)
}

func (f *fixture) orders() *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(f.store, f.store.Orders(), f.store.OrderItems(), f.store.AuditLogs(), f.publisher, f.metrics, quietLogger())
}

func (f *fixture) addToCart(t *testing.T, user *model.User, p model.Product, qty int64) {
	t.Helper()
	_, err := f.cart().UpsertLine(context.Background(), user, usecase.UpsertLineInput{Slug: p.Slug, Quantity: qty})
	require.NoError(t, err)
}

func quietLogger() *log.Logger {
	return logging.NewWithOutput("test", "error", io.Discard)
}

func requireHTTPError(t *testing.T, err error, target *usecase.HTTPError) *usecase.HTTPError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	require.Equal(t, target.Status, he.Status)
	return he
}

// 住所の入力検証を通す
type acceptAll struct{}

func (acceptAll) ValidateAddress(ctx context.Context, req usecase.AddressRequest) error { return nil }
