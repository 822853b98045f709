// Package sms sends notification SMS through the Eskiz gateway.
package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/khiva-consulting/backoffice-api/internal/config"
	"go.uber.org/zap"
)

// Sender delivers a text message to a phone number
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// Client is the Eskiz HTTP gateway client
type Client struct {
	httpClient *http.Client
	config     *config.SMSConfig
	logger     *zap.Logger
}

func NewClient(cfg *config.SMSConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		config: cfg,
		logger: logger,
	}
}

// Send posts one message to the gateway. A non-200 response is an error;
// the response body is included for diagnosis.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	if phone == "" {
		return fmt.Errorf("empty phone number")
	}

	data := url.Values{}
	data.Set("mobile_phone", phone)
	data.Set("message", message)
	data.Set("from", c.config.From)

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/message/sms/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Info("sms sent", zap.String("phone", phone))
	return nil
}

// NopSender is used when the gateway is disabled; sends are logged and dropped
type NopSender struct {
	Logger *zap.Logger
}

func (n *NopSender) Send(_ context.Context, phone, _ string) error {
	if n.Logger != nil {
		n.Logger.Debug("sms disabled, dropping message", zap.String("phone", phone))
	}
	return nil
}
