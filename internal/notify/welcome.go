package notify

import (
	"context"
	"fmt"

	"github.com/laudier3/urlcurt/internal/messaging"
	"go.uber.org/zap"
)

// WelcomeHandler turns user.registered events into a welcome SMS.
func WelcomeHandler(notifier Notifier, logger *zap.Logger) messaging.Handler[UserRegisteredEvent] {
	return func(ctx context.Context, event *UserRegisteredEvent) error {
		if event.Phone == "" {
			return nil
		}

		body := fmt.Sprintf("Welcome, %s! Your account is ready.", event.Name)

		if err := notifier.SendSMS(ctx, event.Phone, body); err != nil {
			// Notification delivery is best-effort: log, ack the message and
			// never fail registration retroactively.
			logger.Warn("welcome sms failed",
				zap.Int64("user_id", event.UserID),
				zap.Error(err),
			)
		}

		return nil
	}
}
