package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/config"
	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
	"github.com/BruksfildServices01/meister-web/internal/reviews"
	"github.com/BruksfildServices01/meister-web/internal/session"
	"github.com/BruksfildServices01/meister-web/internal/timezone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBackend records what the front sends and answers like the real API.
type fakeBackend struct {
	mu sync.Mutex

	reviewsFail   bool
	rejectBooking bool
	conflictOnce  bool

	appointments []backend.AppointmentRequest
	contacts     []backend.ContactRequest
	timeOff      []backend.TimeOffRequest
	deleted      []string
	reviewCalls  int
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
	admin := func(r *http.Request) bool {
		user, pass, ok := r.BasicAuth()
		return ok && user == "admin" && pass == "secret"
	}

	mux.HandleFunc("GET /api/barbers/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"id":1,"name":" Ali ","is_active":true,"working_days":[0,1,2,3,4,5]},{"id":2,"name":"Iman","is_active":false}]`)
	})
	mux.HandleFunc("GET /api/appointments/availability/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"days":[{"date":"2025-06-10","free":3},{"date":"2025-06-11","free":0},{"date":"2025-06-12","free":5}]}`)
	})
	mux.HandleFunc("GET /api/appointments/slots/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"slots":["09:00","09:30"]}`)
	})
	mux.HandleFunc("POST /api/appointments/", func(w http.ResponseWriter, r *http.Request) {
		var req backend.AppointmentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.appointments = append(f.appointments, req)
		reject := f.rejectBooking
		f.mu.Unlock()
		if reject {
			writeJSON(w, 422, `{"duration_minutes":["Invalid duration"]}`)
			return
		}
		writeJSON(w, 201, `{"id":77,"barber":1,"start_at":"`+req.StartAt+`","status":"confirmed"}`)
	})
	mux.HandleFunc("POST /api/contact/", func(w http.ResponseWriter, r *http.Request) {
		var req backend.ContactRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.contacts = append(f.contacts, req)
		f.mu.Unlock()
		writeJSON(w, 200, `{"ok":true}`)
	})
	mux.HandleFunc("GET /api/reviews/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.reviewCalls++
		f.mu.Unlock()
		if f.reviewsFail {
			writeJSON(w, 500, `{"detail":"upstream"}`)
			return
		}
		writeJSON(w, 200, `{"rating":4.8,"userRatingCount":120,"reviews":[{"authorName":"Lena","rating":5,"text":"Great fade","time":"2 weeks ago"}]}`)
	})
	mux.HandleFunc("GET /api/admin/barbers/{id}/timeoff", func(w http.ResponseWriter, r *http.Request) {
		if !admin(r) {
			writeJSON(w, 401, `{"detail":"Invalid credentials"}`)
			return
		}
		writeJSON(w, 200, `[{"id":5,"barber":1,"start_date":"2025-07-01","end_date":"2025-07-03","reason":"vacation"}]`)
	})
	mux.HandleFunc("POST /api/admin/barbers/{id}/timeoff", func(w http.ResponseWriter, r *http.Request) {
		if !admin(r) {
			writeJSON(w, 401, `{"detail":"Invalid credentials"}`)
			return
		}
		var req backend.TimeOffRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.timeOff = append(f.timeOff, req)
		conflict := f.conflictOnce && !req.Force
		f.mu.Unlock()
		if conflict {
			writeJSON(w, 409, `{"detail":"Conflicts detected","conflicts":{"time_off":[],"appointments":[{"id":3,"start_at":"2025-06-10T09:00:00","customer":{"id":1,"name":"Max","phone":"0176"}}]}}`)
			return
		}
		writeJSON(w, 201, `{"id":9,"barber":1,"start_date":"`+req.StartDate+`","end_date":"`+req.EndDate+`"}`)
	})
	mux.HandleFunc("DELETE /api/admin/timeoff/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/admin/timeoff/conflicts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"time_off":[],"appointments":[]}`)
	})
	return mux
}

type testSite struct {
	t       *testing.T
	server  *httptest.Server
	backend *fakeBackend
}

func newTestSite(t *testing.T, fb *fakeBackend) *testSite {
	t.Helper()
	return newTestSiteWithRedis(t, fb, nil)
}

func newTestSiteWithRedis(t *testing.T, fb *fakeBackend, rdb *redis.Client) *testSite {
	t.Helper()

	api := httptest.NewServer(fb.handler())
	t.Cleanup(api.Close)

	cfg := &config.Config{
		Env:               "test",
		SessionSecret:     "test-secret-test-secret",
		SessionTTL:        time.Hour,
		ContactRatePerMin: 3,
		AvailabilityWait:  time.Second,
	}
	log := zap.NewNop()
	client := backend.NewClient(api.URL+"/api", 2*time.Second, log)

	clock := func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, timezone.Shop()) }
	store := session.NewStore(cfg.SessionTTL, func() *booking.Wizard {
		return booking.NewWizard(client, booking.WithClock(clock))
	})

	r := gin.New()
	require.NoError(t, RegisterRoutes(r, Deps{
		Config:   cfg,
		Log:      log,
		Bundle:   i18n.MustLoad(),
		Backend:  client,
		Sessions: store,
		Reviews:  reviews.NewService(rdb, client, time.Hour, log),
		Redis:    rdb,
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testSite{t: t, server: srv, backend: fb}
}

// browser keeps cookies and stops at redirects so they can be asserted.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (s *testSite) browser() *browser {
	jar, _ := cookiejar.New(nil)
	return &browser{
		t:    s.t,
		base: s.server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (int, string, http.Header) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header
}

func (b *browser) post(path string, form url.Values) (int, string, http.Header) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header
}

func (b *browser) postJSON(path, payload string) (int, []byte) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(payload))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func (f *fakeBackend) reviewFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reviewCalls
}
