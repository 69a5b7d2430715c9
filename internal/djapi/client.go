package djapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"djbot/internal/domain"

	"go.uber.org/zap"
)

// StatusError is returned when the backend answers with an unexpected HTTP status
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the AI DJ backend
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a backend client. A zero timeout means no timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type statusPayload struct {
	Status         string   `json:"status"`
	Warnings       int      `json:"warnings"`
	MutedUntil     *float64 `json:"muted_until"`
	SuspendedUntil *float64 `json:"suspended_until"`
}

// UserStatus fetches the moderation snapshot of a user
func (c *Client) UserStatus(ctx context.Context, userID string) (domain.UserStatus, error) {
	var p statusPayload
	if err := c.getJSON(ctx, "/api/user_status/"+url.PathEscape(userID), &p); err != nil {
		return domain.UserStatus{}, err
	}

	return domain.UserStatus{
		State:          domain.ParseModerationState(p.Status),
		Warnings:       max0(p.Warnings),
		MutedUntil:     epochTime(p.MutedUntil),
		SuspendedUntil: epochTime(p.SuspendedUntil),
	}, nil
}

type requestContext struct {
	NowPlaying *domain.Song `json:"now_playing"`
	DJProfile  *int         `json:"dj_profile"`
}

type requestPayload struct {
	Request    string         `json:"request"`
	UserID     string         `json:"user_id"`
	Tone       string         `json:"tone"`
	VoiceSpeed float64        `json:"voice_speed"`
	Context    requestContext `json:"context"`
}

type responsePayload struct {
	Success        bool     `json:"success"`
	Response       string   `json:"response"`
	AudioPath      *string  `json:"audio_path"`
	Error          string   `json:"error"`
	Warnings       *int     `json:"warnings"`
	MutedUntil     *float64 `json:"muted_until"`
	SuspendedUntil *float64 `json:"suspended_until"`
}

// SendRequest dispatches one DJ request.
// The reply body is decoded whatever the HTTP status, since failures carry a payload.
func (c *Client) SendRequest(ctx context.Context, req domain.DJRequest) (*domain.DJResponse, error) {
	body, err := json.Marshal(requestPayload{
		Request:    req.Text,
		UserID:     req.UserID,
		Tone:       req.Tone,
		VoiceSpeed: req.VoiceSpeed,
		Context: requestContext{
			NowPlaying: req.NowPlaying,
			DJProfile:  req.ProfileID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode dj request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/dj_request", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var p responsePayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode dj response (status %d): %w", resp.StatusCode, err)
	}

	out := &domain.DJResponse{
		Success:        p.Success,
		Response:       p.Response,
		Error:          p.Error,
		Warnings:       p.Warnings,
		MutedUntil:     epochTime(p.MutedUntil),
		SuspendedUntil: epochTime(p.SuspendedUntil),
	}
	if p.AudioPath != nil {
		out.AudioPath = *p.AudioPath
	}
	return out, nil
}

// ActiveProfile returns the active DJ profile, or nil if the user has none
func (c *Client) ActiveProfile(ctx context.Context, userID string) (*domain.DJProfile, error) {
	var p domain.DJProfile
	err := c.getJSON(ctx, "/api/active_dj_profile?user_id="+url.QueryEscape(userID), &p)

	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// NowPlaying returns the current song, or nil when nothing plays
func (c *Client) NowPlaying(ctx context.Context) (*domain.Song, error) {
	var p struct {
		Playing *domain.Song `json:"playing"`
	}
	if err := c.getJSON(ctx, "/api/now_playing", &p); err != nil {
		return nil, err
	}
	return p.Playing, nil
}

// ResetUser clears the moderation state of a user
func (c *Client) ResetUser(ctx context.Context, userID string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/reset_user/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var p struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return fmt.Errorf("failed to decode reset response: %w", err)
	}
	if !p.Success {
		return fmt.Errorf("reset of %s rejected: %s", userID, p.Message)
	}
	return nil
}

// ModerationSettings fetches the backend moderation rules
func (c *Client) ModerationSettings(ctx context.Context) (*domain.ModerationSettings, error) {
	var s domain.ModerationSettings
	if err := c.getJSON(ctx, "/api/moderation_settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", resp.Request.URL.Path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}

	c.logger.Debug("Backend call",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Method:     resp.Request.Method,
		Path:       resp.Request.URL.Path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

func epochTime(v *float64) *time.Time {
	if v == nil || *v <= 0 {
		return nil
	}
	sec, frac := math.Modf(*v)
	t := time.Unix(int64(sec), int64(frac*1e9))
	return &t
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
