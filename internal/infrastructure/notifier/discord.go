package notifier

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DiscordNotifier implements port.Notifier by posting plain-text messages to
// a Discord webhook URL.
type DiscordNotifier struct {
	webhookURL string
	timeout    time.Duration
	httpClient *fasthttp.Client
	logger     *zap.Logger
}

var _ port.Notifier = (*DiscordNotifier)(nil)

type webhookPayload struct {
	Content string `json:"content"`
}

// NewDiscordNotifier creates a DiscordNotifier.
func NewDiscordNotifier(webhookURL string, timeout time.Duration, logger *zap.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		timeout:    timeout,
		httpClient: &fasthttp.Client{},
		logger:     logger.Named("discord_notifier"),
	}
}

// Send implements port.Notifier.
func (n *DiscordNotifier) Send(ctx context.Context, message string) error {
	if n.webhookURL == "" {
		return fmt.Errorf("no webhook URL configured")
	}

	body, err := json.Marshal(webhookPayload{Content: message})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(n.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = n.httpClient.DoDeadline(req, resp, deadline)
	} else {
		err = n.httpClient.DoTimeout(req, resp, n.timeout)
	}
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook request rejected with status %d", status)
	}

	metrics.NotificationsSent.Inc()
	n.logger.Info("Notification sent", zap.Int("status", status), zap.Int("message_length", len(message)))
	return nil
}
