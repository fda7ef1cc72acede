package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
)

const (
	defaultTimeout = 15 * time.Second
	adminUser      = "admin"
)

// Recorder receives one observation per backend round trip.
type Recorder interface {
	ObserveBackend(endpoint string, status int, elapsed time.Duration)
}

// Client talks JSON to the booking backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    Recorder
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ======================================================
// PUBLIC
// ======================================================

func (c *Client) ListBarbers(ctx context.Context) ([]Barber, error) {
	var out []Barber
	err := c.do(ctx, request{
		endpoint: "barbers",
		method:   http.MethodGet,
		path:     "/barbers/",
		fallback: "Failed to load barbers",
	}, &out)
	return out, err
}

func (c *Client) MonthAvailability(ctx context.Context, barberID int, start, end calendar.Date, serviceType string, duration int) (*Availability, error) {
	q := url.Values{}
	q.Set("barber_id", strconv.Itoa(barberID))
	q.Set("start", start.String())
	q.Set("end", end.String())
	setService(q, serviceType, duration)

	var out Availability
	if err := c.do(ctx, request{
		endpoint: "availability",
		method:   http.MethodGet,
		path:     "/appointments/availability/",
		query:    q,
		fallback: "Failed to load availability",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Slots(ctx context.Context, barberID int, date calendar.Date, serviceType string, duration int) ([]string, error) {
	q := url.Values{}
	q.Set("barber_id", strconv.Itoa(barberID))
	q.Set("date", date.String())
	setService(q, serviceType, duration)

	var out Slots
	if err := c.do(ctx, request{
		endpoint: "slots",
		method:   http.MethodGet,
		path:     "/appointments/slots/",
		query:    q,
		fallback: "Failed to load time slots",
	}, &out); err != nil {
		return nil, err
	}
	if out.Slots == nil {
		return []string{}, nil
	}
	return out.Slots, nil
}

func (c *Client) CreateAppointment(ctx context.Context, payload AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, request{
		endpoint: "appointments",
		method:   http.MethodPost,
		path:     "/appointments/",
		body:     payload,
		fallback: "Booking failed",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendContact(ctx context.Context, payload ContactRequest) error {
	return c.do(ctx, request{
		endpoint: "contact",
		method:   http.MethodPost,
		path:     "/contact/",
		body:     payload,
		fallback: "Message could not be sent",
	}, nil)
}

func (c *Client) Reviews(ctx context.Context, lang string) (*Reviews, error) {
	q := url.Values{}
	if lang != "" {
		q.Set("lang", lang)
	}
	var out Reviews
	if err := c.do(ctx, request{
		endpoint: "reviews",
		method:   http.MethodGet,
		path:     "/reviews/",
		query:    q,
		fallback: "Failed to load reviews",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ======================================================
// ADMIN
// ======================================================

func (c *Client) ListTimeOff(ctx context.Context, password string, barberID int) ([]TimeOff, error) {
	var out []TimeOff
	err := c.do(ctx, request{
		endpoint: "admin_timeoff_list",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/admin/barbers/%d/timeoff", barberID),
		password: password,
		fallback: "Failed to load time off",
	}, &out)
	return out, err
}

// CreateTimeOff returns a *ConflictError when the backend answers 409.
func (c *Client) CreateTimeOff(ctx context.Context, password string, barberID int, payload TimeOffRequest) (*TimeOff, error) {
	var out TimeOff
	if err := c.do(ctx, request{
		endpoint: "admin_timeoff_create",
		method:   http.MethodPost,
		path:     fmt.Sprintf("/admin/barbers/%d/timeoff", barberID),
		body:     payload,
		password: password,
		fallback: "Failed to save time off",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTimeOff(ctx context.Context, password string, id int) error {
	return c.do(ctx, request{
		endpoint: "admin_timeoff_delete",
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/admin/timeoff/%d", id),
		password: password,
		fallback: "Failed to delete time off",
	}, nil)
}

func (c *Client) TimeOffConflicts(ctx context.Context, password string, barberID int, start, end calendar.Date) (*TimeOffConflicts, error) {
	q := url.Values{}
	q.Set("barber_id", strconv.Itoa(barberID))
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())

	var out TimeOffConflicts
	if err := c.do(ctx, request{
		endpoint: "admin_timeoff_conflicts",
		method:   http.MethodGet,
		path:     "/admin/timeoff/conflicts",
		query:    q,
		password: password,
		fallback: "Failed to check conflicts",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ======================================================
// TRANSPORT
// ======================================================

type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	password string
	fallback string
}

func setService(q url.Values, serviceType string, duration int) {
	if serviceType != "" {
		q.Set("service_type", serviceType)
	}
	if duration > 0 {
		q.Set("duration_minutes", strconv.Itoa(duration))
	}
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("backend: marshal %s: %w", r.endpoint, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return fmt.Errorf("backend: create request %s: %w", r.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.password != "" {
		req.SetBasicAuth(adminUser, r.password)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(r.endpoint, 0, started)
		c.logger.Warn("backend request failed",
			zap.String("endpoint", r.endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("backend: %s: %w", r.endpoint, err)
	}
	defer resp.Body.Close()
	c.observe(r.endpoint, resp.StatusCode, started)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read %s: %w", r.endpoint, err)
	}

	if resp.StatusCode == http.StatusConflict && r.method == http.MethodPost && r.password != "" {
		return decodeConflict(respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ExtractError(respBody, r.fallback)
		c.logger.Info("backend returned error",
			zap.String("endpoint", r.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &APIError{Status: resp.StatusCode, Message: msg, Body: respBody}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("backend: unmarshal %s: %w", r.endpoint, err)
	}
	return nil
}

func decodeConflict(body []byte) error {
	var payload struct {
		Detail    string           `json:"detail"`
		Conflicts TimeOffConflicts `json:"conflicts"`
	}
	_ = json.Unmarshal(body, &payload)
	return &ConflictError{Detail: payload.Detail, Conflicts: payload.Conflicts}
}

func (c *Client) observe(endpoint string, status int, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveBackend(endpoint, status, time.Since(started))
}
