package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers a text message to a user out-of-band. Delivery failures
// never fail the operation that triggered them; callers log and move on.
type Notifier interface {
	SendSMS(ctx context.Context, phone, body string) error
}

// HTTPNotifier posts messages to a Twilio-style SMS provider REST API.
type HTTPNotifier struct {
	client   *http.Client
	endpoint string
	from     string
	apiKey   string
}

// NewHTTPNotifier creates a notifier against the given provider endpoint.
func NewHTTPNotifier(endpoint, from, apiKey string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		from:     from,
		apiKey:   apiKey,
	}
}

func (n *HTTPNotifier) SendSMS(ctx context.Context, phone, body string) error {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", n.from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sms provider returned %d", resp.StatusCode)
	}

	return nil
}

// LogNotifier logs messages instead of sending them. Used in development and
// whenever no provider is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendSMS(_ context.Context, phone, body string) error {
	n.logger.Info("sms (log only)",
		zap.String("phone", phone),
		zap.String("body", body),
	)

	return nil
}
