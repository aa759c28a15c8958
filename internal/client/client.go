package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/sounds"
	"github.com/vcns/bell-timer/internal/sysconf"
)

// APIError carries a non-2xx response from the bell server.
type APIError struct {
	// StatusCode is the HTTP status returned by the server.
	StatusCode int
	// Message is the server-provided error text.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Status mirrors the server's status report.
type Status struct {
	Status              string  `json:"status"`
	PID                 int     `json:"pid"`
	Version             string  `json:"version"`
	UptimeSeconds       int64   `json:"uptime_seconds"`
	AlarmCount          int     `json:"alarm_count"`
	AudioAvailable      bool    `json:"audio_available"`
	PlaybackErrors      int64   `json:"playback_errors"`
	HeartbeatAgeSeconds float64 `json:"heartbeat_age_seconds"`
}

// NextAlarm pairs an alarm with its next trigger instant.
type NextAlarm struct {
	Alarm *domain.Alarm `json:"alarm"`
	At    time.Time     `json:"at"`
}

// Client is a typed HTTP client for the bell server API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		//nolint:exhaustruct // Default transport suffices for a LAN appliance.
		httpc: &http.Client{Timeout: timeout},
	}
}

// ListAlarms returns all alarms in display order.
func (c *Client) ListAlarms(ctx context.Context) ([]domain.Alarm, error) {
	var out struct {
		Alarms []domain.Alarm `json:"alarms"`
	}

	if err := c.doJSON(ctx, http.MethodGet, "/api/alarms", nil, &out); err != nil {
		return nil, err
	}

	return out.Alarms, nil
}

// AddAlarm creates a new alarm and returns it with its assigned id.
func (c *Client) AddAlarm(ctx context.Context, a domain.Alarm) (domain.Alarm, error) {
	var out struct {
		Alarm domain.Alarm `json:"alarm"`
	}

	if err := c.doJSON(ctx, http.MethodPost, "/api/alarms", a, &out); err != nil {
		return domain.Alarm{}, err
	}

	return out.Alarm, nil
}

// UpdateAlarm replaces the alarm with the provided id.
func (c *Client) UpdateAlarm(ctx context.Context, id string, a domain.Alarm) (domain.Alarm, error) {
	var out struct {
		Alarm domain.Alarm `json:"alarm"`
	}

	if err := c.doJSON(ctx, http.MethodPut, "/api/alarms/"+url.PathEscape(id), a, &out); err != nil {
		return domain.Alarm{}, err
	}

	return out.Alarm, nil
}

// DeleteAlarm removes the alarm with the provided id.
func (c *Client) DeleteAlarm(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/alarms/"+url.PathEscape(id), nil, nil)
}

// Next returns the soonest upcoming alarm, or nil when none is scheduled.
func (c *Client) Next(ctx context.Context) (*NextAlarm, error) {
	var out NextAlarm
	if err := c.doJSON(ctx, http.MethodGet, "/api/alarms/next", nil, &out); err != nil {
		return nil, err
	}

	if out.Alarm == nil {
		return nil, nil //nolint:nilnil // No upcoming alarm is a normal outcome.
	}

	return &out, nil
}

// ListSounds returns the server's sound library.
func (c *Client) ListSounds(ctx context.Context) ([]sounds.Sound, error) {
	var out struct {
		Sounds []sounds.Sound `json:"sounds"`
	}

	if err := c.doJSON(ctx, http.MethodGet, "/api/sounds", nil, &out); err != nil {
		return nil, err
	}

	return out.Sounds, nil
}

// UploadSound streams a .wav file to the server's sound library.
func (c *Client) UploadSound(ctx context.Context, name string, r io.Reader) (sounds.Sound, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return sounds.Sound{}, fmt.Errorf("build multipart body: %w", err)
	}

	if _, err = io.Copy(part, r); err != nil {
		return sounds.Sound{}, fmt.Errorf("read sound data: %w", err)
	}

	if err = mw.Close(); err != nil {
		return sounds.Sound{}, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sounds", &buf)
	if err != nil {
		return sounds.Sound{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Sound sounds.Sound `json:"sound"`
	}

	if err = c.send(req, &out); err != nil {
		return sounds.Sound{}, err
	}

	return out.Sound, nil
}

// DeleteSound removes a sound from the server's library.
func (c *Client) DeleteSound(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/sounds/"+url.PathEscape(name), nil, nil)
}

// TestSound asks the server to play a sound once.
func (c *Client) TestSound(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/sounds/test", map[string]string{"sound": name}, nil)
}

// Status returns the server's status report.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return Status{}, err
	}

	return out, nil
}

// TimeStatus returns the server host's timezone and NTP state.
func (c *Client) TimeStatus(ctx context.Context) (sysconf.TimeStatus, error) {
	var out sysconf.TimeStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/system/time", nil, &out); err != nil {
		return sysconf.TimeStatus{}, err
	}

	return out, nil
}

// TimeSync asks the server host to enable NTP synchronization.
func (c *Client) TimeSync(ctx context.Context) (sysconf.Result, error) {
	var out sysconf.Result
	if err := c.doJSON(ctx, http.MethodPost, "/api/system/timesync", nil, &out); err != nil {
		return sysconf.Result{}, err
	}

	return out, nil
}

// NetplanApply asks the server host to apply its netplan configuration.
func (c *Client) NetplanApply(ctx context.Context) (sysconf.Result, error) {
	var out sysconf.Result
	if err := c.doJSON(ctx, http.MethodPost, "/api/system/netplan-apply", nil, &out); err != nil {
		return sysconf.Result{}, err
	}

	return out, nil
}

// doJSON sends an optional JSON body and decodes an optional JSON response.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send executes the request and maps non-2xx responses to APIError.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call server: %w", err)
	}

	defer func() {
		//nolint:errcheck // Body close failures after a full read are not actionable.
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Handlers report failures as {"error": ...}; the system proxy
		// endpoints return a pass/fail result with a message instead.
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}

		message := resp.Status

		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil {
			switch {
			case apiErr.Error != "":
				message = apiErr.Error
			case apiErr.Message != "":
				message = apiErr.Message
			}
		}

		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
