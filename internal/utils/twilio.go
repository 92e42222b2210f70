package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client — отправка SMS через Twilio Messages API (или имитация в dry-run).
type Client struct {
	AccountSID string
	AuthToken  string
	From       string
	DryRun     bool

	httpClient *http.Client
}

func NewClientWithOptions(accountSID, authToken, from string, dryRun bool) *Client {
	return &Client{AccountSID: accountSID, AuthToken: authToken, From: from, DryRun: dryRun}
}

func (c *Client) client() *http.Client {
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c.httpClient
}

// SendSMS — form POST на Messages.json с basic auth.
// DRY-RUN (или пустые креды) — не делаем HTTP-запрос, только лог.
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	if c.DryRun || c.AccountSID == "" {
		log.Printf("[twilio][dry-run] to=%s from=%q body=%q", to, c.From, body)
		return nil
	}

	apiURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.AccountSID)

	form := url.Values{
		"To":   {to},
		"From": {c.From},
		"Body": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.client().Do(req)
	if err != nil {
		return fmt.Errorf("send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
