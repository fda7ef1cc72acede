package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
	"github.com/BruksfildServices01/meister-web/internal/session"
)

const testSecret = "0123456789abcdef0123"

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(store *session.Store) *gin.Engine {
	r := gin.New()
	r.Use(SessionMiddleware(store, SessionConfig{Secret: testSecret, TTL: time.Hour}))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSession(c).ID)
	})
	admin := r.Group("/admin/api", RequireAdmin("/admin"))
	admin.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/admin/page", RequireAdmin("/admin"), func(c *gin.Context) { c.String(http.StatusOK, "page") })
	r.POST("/login", func(c *gin.Context) {
		CurrentSession(c).SetAdminPassword("pw")
		c.Status(http.StatusNoContent)
	})
	return r
}

func newStore() *session.Store {
	return session.NewStore(time.Hour, func() *booking.Wizard { return booking.NewWizard(nil) })
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			return ck
		}
	}
	return nil
}

func TestSessionIssuedAndReused(t *testing.T) {
	store := newStore()
	r := newSessionRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	ck := sessionCookie(t, w)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	first := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())
	assert.Nil(t, sessionCookie(t, w))
	assert.Equal(t, 1, store.Len())
}

func TestTamperedTokenStartsNewSession(t *testing.T) {
	store := newStore()
	r := newSessionRouter(store)

	other, err := signSessionToken("forged", "another-secret-value-x", time.Now(), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: other})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "forged", w.Body.String())
	assert.NotNil(t, sessionCookie(t, w))
}

func TestParseSessionToken(t *testing.T) {
	now := time.Now()
	tok, err := signSessionToken("abc", testSecret, now, time.Hour)
	require.NoError(t, err)
	sid, issued := parseSessionToken(tok, testSecret, now)
	assert.Equal(t, "abc", sid)
	assert.Equal(t, now.Unix(), issued.Unix())
	sid, _ = parseSessionToken(tok, "wrong-secret-wrong-secret", now)
	assert.Empty(t, sid)

	sid, _ = parseSessionToken(tok, testSecret, now.Add(2*time.Hour))
	assert.Empty(t, sid)
	sid, _ = parseSessionToken("garbage", testSecret, now)
	assert.Empty(t, sid)
}

func TestActiveSessionOutlivesTokenLifetime(t *testing.T) {
	ttl := 10 * time.Minute
	clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	store := session.NewStore(ttl, func() *booking.Wizard { return booking.NewWizard(nil) }, session.WithClock(now))
	r := gin.New()
	r.Use(SessionMiddleware(store, SessionConfig{Secret: testSecret, TTL: ttl, Now: now}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, CurrentSession(c).ID) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := sessionCookie(t, w)
	require.NotNil(t, ck)
	first := w.Body.String()

	reissued := 0
	for i := 0; i < 10; i++ {
		clock = clock.Add(4 * time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(ck)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, first, w.Body.String(), "request %d", i)
		if fresh := sessionCookie(t, w); fresh != nil {
			ck = fresh
			reissued++
		}
	}
	assert.Equal(t, 1, store.Len())
	assert.Greater(t, reissued, 0)

	clock = clock.Add(ttl + time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, first, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	r := newSessionRouter(newStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/page", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	ck := sessionCookie(t, w)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/ping", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(ck)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error_code":"admin_required","message":"admin password required"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(ck)
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/admin/page", nil)
	req.AddCookie(ck)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(1, 2)
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewLimiter(1, 1), zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

type countingObserver struct{ routes []string }

func (o *countingObserver) ObserveHTTP(route string, _ int) { o.routes = append(o.routes, route) }

func TestRequestLogger(t *testing.T) {
	obs := &countingObserver{}
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop(), obs))
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/1", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/things/2", nil)
	req.Header.Set(RequestIDHeader, "6f1c2a52-8a7e-4c41-9b7a-2f5d1c0e9a11")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2a52-8a7e-4c41-9b7a-2f5d1c0e9a11", w.Header().Get(RequestIDHeader))
	assert.Equal(t, []string{"/things/:id", "/things/:id"}, obs.routes)
}

func TestLanguageMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(LanguageMiddleware(i18n.MustLoad()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, Translator(c).Lang()) })

	req := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "de", w.Body.String())
	require.NotEmpty(t, w.Result().Cookies())
	assert.Equal(t, LangCookie, w.Result().Cookies()[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "de", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: LangCookie, Value: "en"})
	req.Header.Set("Accept-Language", "de")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "en", w.Body.String())
}
