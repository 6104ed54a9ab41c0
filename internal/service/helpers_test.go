package service

import (
	"context"
	"sync"
	"testing"

	"compara-mercado/internal/kvstore"
	"compara-mercado/internal/metrics"
	"compara-mercado/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalog(t *testing.T) repository.CatalogRepository {
	t.Helper()
	catalog, err := repository.NewCatalogRepository(context.Background(), kvstore.NewMemoryStore(), zap.NewNop(), repository.CatalogOptions{})
	require.NoError(t, err)
	return catalog
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string) {
	p.mu.Lock()
	p.events = append(p.events, eventType)
	p.mu.Unlock()
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type listFixture struct {
	store     kvstore.Store
	catalog   repository.CatalogRepository
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	service   ShoppingListService
}

func newListFixture(t *testing.T) *listFixture {
	t.Helper()
	f := &listFixture{
		store:     kvstore.NewMemoryStore(),
		catalog:   newCatalog(t),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(),
	}
	f.service = f.reload(t)
	return f
}

// reload builds a new service over the same store, as after a restart
func (f *listFixture) reload(t *testing.T) ShoppingListService {
	t.Helper()
	svc, err := NewShoppingListService(context.Background(),
		repository.NewShoppingListRepository(f.store, zap.NewNop()),
		f.catalog, f.publisher, f.metrics, zap.NewNop())
	require.NoError(t, err)
	return svc
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}
