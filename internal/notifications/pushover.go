package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultPushoverEndpoint = "https://api.pushover.net/1/messages.json"

type pushoverSender struct {
	endpoint string
	user     string
	token    string
	device   string
	client   *http.Client
}

func (p *pushoverSender) send(ctx context.Context, msg message) error {
	form := url.Values{}
	form.Set("token", p.token)
	form.Set("user", p.user)
	form.Set("message", msg.body)
	if msg.title != "" {
		form.Set("title", msg.title)
	}
	if p.device != "" {
		form.Set("device", p.device)
	}
	switch msg.priority {
	case priorityHigh:
		form.Set("priority", "1")
	case priorityLow:
		form.Set("priority", "-1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build pushover request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send pushover notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("pushover returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
