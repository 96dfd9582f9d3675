package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlumConfig holds the SMS gateway credentials.
type PlumConfig struct {
	BaseURL  string
	Username string
	Password string
}

// PlumGateway talks to the Plum SMS gateway. The bearer token is cached until
// shortly before it expires and refreshed once when a call returns 401.
type PlumGateway struct {
	cfg    PlumConfig
	client *http.Client
	log    *zap.Logger
	now    func() time.Time

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewPlumGateway creates a gateway client.
func NewPlumGateway(cfg PlumConfig, log *zap.Logger) *PlumGateway {
	if log == nil {
		log = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PlumGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log.Named("plum"),
		now:    time.Now,
	}
}

type plumAuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// Token returns a cached token, fetching a new one if needed.
func (g *PlumGateway) Token(ctx context.Context) (string, error) {
	return g.getToken(ctx, false)
}

func (g *PlumGateway) getToken(ctx context.Context, force bool) (string, error) {
	if !force {
		g.mu.RLock()
		if g.token != "" && g.now().Before(g.tokenExpiry) {
			t := g.token
			g.mu.RUnlock()
			return t, nil
		}
		g.mu.RUnlock()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !force && g.token != "" && g.now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"username": g.cfg.Username,
		"password": g.cfg.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("plum auth request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("plum auth request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("plum auth failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var authResp plumAuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return "", fmt.Errorf("plum auth unmarshal: %w", err)
	}
	if authResp.Token == "" {
		return "", errors.New("plum auth: empty token")
	}

	g.token = authResp.Token
	if authResp.ExpiresIn > 0 {
		g.tokenExpiry = g.now().Add(time.Duration(authResp.ExpiresIn)*time.Second - 30*time.Second)
	} else {
		g.tokenExpiry = g.now().Add(55 * time.Minute)
	}
	g.log.Debug("token refreshed", zap.Time("expires_at", g.tokenExpiry))
	return g.token, nil
}

// PlumResponse wraps the API response.
type PlumResponse struct {
	Status int
	Body   []byte
}

// Post performs an authenticated JSON call against path.
func (g *PlumGateway) Post(ctx context.Context, path string, body any) (*PlumResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("plum request marshal: %w", err)
	}
	url := g.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")

	token, err := g.Token(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := g.do(ctx, url, token, data)
	if err != nil {
		return nil, err
	}

	// Retry once on 401.
	if resp.Status == http.StatusUnauthorized {
		token, err = g.getToken(ctx, true)
		if err != nil {
			return nil, err
		}
		return g.do(ctx, url, token, data)
	}
	return resp, nil
}

func (g *PlumGateway) do(ctx context.Context, url, token string, data []byte) (*PlumResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("plum request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plum request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return &PlumResponse{Status: resp.StatusCode, Body: respBody}, nil
}

// SendSMS sends a text message to phone.
func (g *PlumGateway) SendSMS(ctx context.Context, phone, message string) error {
	resp, err := g.Post(ctx, "sms/send", map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("plum send sms: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return fmt.Errorf("plum send sms: status %d, body: %s", resp.Status, string(resp.Body))
	}
	return nil
}

// SendCode texts a verification code. Only phone contacts are supported.
func (g *PlumGateway) SendCode(ctx context.Context, contact, code string) error {
	if !IsPhoneContact(contact) {
		return ErrUnsupportedContact
	}
	phone := strings.NewReplacer(" ", "", "+", "").Replace(contact)
	return g.SendSMS(ctx, phone, fmt.Sprintf("FoodHub verification code: %s. It expires in 10 minutes.", code))
}
