package transport

import (
	"net/http"
	"testing"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Theme(t *testing.T) {
	f := newAPIFixture(t, stubGenerator{})

	w := f.do(t, http.MethodGet, "/api/settings/theme", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var theme ThemeResponse
	decode(t, w, &theme)
	assert.Equal(t, domain.ThemeLight, theme.Theme)

	w = f.do(t, http.MethodPut, "/api/settings/theme", ThemeRequest{Theme: "dark"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{websocket.EventThemeUpdated}, f.publisher.Events())

	w = f.do(t, http.MethodGet, "/api/settings/theme", nil, "")
	decode(t, w, &theme)
	assert.Equal(t, domain.ThemeDark, theme.Theme)

	w = f.do(t, http.MethodPut, "/api/settings/theme", ThemeRequest{Theme: "sepia"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, f.publisher.Events(), 1)
}
