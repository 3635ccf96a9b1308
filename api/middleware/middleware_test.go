package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Repository {
	return catalog.NewStaticRepository(&catalog.Catalog{
		Stores: []catalog.Store{
			{Number: "100", Name: "Zürich HB", LangCode: "D"},
			{Number: "200", Name: "Genève", LangCode: "F"},
		},
	})
}

func cookieStore(t *testing.T) *session.CookieStore {
	t.Helper()
	store, err := session.NewCookieStore(config.SessionConfig{
		Secret:     "test-secret",
		Issuer:     "storeshop",
		CookieName: "storeshop_session",
		TTL:        time.Hour,
	})
	require.NoError(t, err)
	return store
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(types.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(types.RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(types.RequestIDHeader))
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRecovererServesPlainTextToBrowsers(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Interner Fehler")
}

func TestRecovererKeepsStartedResponse(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestLoggingRecordsStatus(t *testing.T) {
	var inner *statusRecorder
	h := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = w.(*statusRecorder)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, inner)
	assert.Equal(t, http.StatusTeapot, inner.status)
	assert.Equal(t, 3, inner.bytes)
}

func TestSessionSelectsFirstStoreAndPersists(t *testing.T) {
	store := cookieStore(t)
	var seen session.Context
	h := Session(store, testCatalog(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, "100", seen.StoreNumber)
	assert.Equal(t, "de", seen.Lang())
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestSessionKeepsExistingSelection(t *testing.T) {
	store := cookieStore(t)
	first := httptest.NewRecorder()
	require.NoError(t, store.Save(first, httptest.NewRequest(http.MethodGet, "/", nil),
		session.Context{}.SelectStore(catalog.Store{Number: "200", LangCode: "F"})))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}
	var seen session.Context
	h := Session(store, testCatalog(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "200", seen.StoreNumber)
	assert.Equal(t, "fr", seen.Lang())
	assert.Empty(t, rec.Result().Cookies(), "unchanged session is not rewritten")
}

func TestSessionResetsTamperedCookie(t *testing.T) {
	store := cookieStore(t)
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: "storeshop_session", Value: "not-a-token"})

	var seen session.Context
	h := Session(store, testCatalog(), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "100", seen.StoreNumber)
	assert.NotEmpty(t, rec.Result().Cookies())
}
