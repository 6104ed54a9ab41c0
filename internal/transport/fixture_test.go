package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"compara-mercado/internal/kvstore"
	"compara-mercado/internal/metrics"
	"compara-mercado/internal/middleware"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "s3cret-admin"

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

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (string, error) {
	return g.text, g.err
}

type apiFixture struct {
	router         http.Handler
	catalog        service.CatalogService
	catalogHandler *CatalogHandler
	publisher      *recordingPublisher
	admin          service.AdminService
}

func newAPIFixture(t *testing.T, generator service.TextGenerator) *apiFixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := kvstore.NewMemoryStore()
	m := metrics.New()
	publisher := &recordingPublisher{}

	catalogRepo, err := repository.NewCatalogRepository(ctx, store, logger, repository.CatalogOptions{})
	require.NoError(t, err)
	promotions := service.NewPromotionService(catalogRepo)
	catalog := service.NewCatalogService(catalogRepo, promotions, publisher, m, logger)
	list, err := service.NewShoppingListService(ctx, repository.NewShoppingListRepository(store, logger), catalogRepo, publisher, m, logger)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admin := service.NewAdminService(string(hash), "test-secret", time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.ErrorHandlingMiddleware(logger))
	catalogHandler := NewCatalogHandler(catalog, service.NewHomeService(promotions), logger)
	catalogHandler.RegisterRoutes(r)
	NewShoppingListHandler(list, service.NewAdvisorService(list, catalogRepo, generator, m, logger), logger).RegisterRoutes(r)
	NewSettingsHandler(repository.NewSettingsRepository(store, logger), publisher, logger).RegisterRoutes(r)
	NewAdminHandler(admin, catalog, logger).RegisterRoutes(r, middleware.AuthMiddleware(admin, logger))

	return &apiFixture{router: r, catalog: catalog, catalogHandler: catalogHandler, publisher: publisher, admin: admin}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := f.admin.Login(testAdminPassword)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
