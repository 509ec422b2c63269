package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/office_backend/models"
	"github.com/sirupsen/logrus"
)

// Notifier delivers success/failure messages about firings. Delivery is
// fire-and-forget: a Send error is logged by the caller and never fails the
// firing itself.
type Notifier interface {
	Send(ctx context.Context, notificationType models.NotificationType, recipientUserId int, subject string, body string) error
}

// LogNotifier writes notifications to the structured log. It is the default
// when no real delivery channel is wired.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) Send(ctx context.Context, notificationType models.NotificationType, recipientUserId int, subject string, body string) error {
	n.Logger.WithFields(logrus.Fields{
		"type":      notificationType,
		"recipient": recipientUserId,
		"subject":   subject,
	}).Info(body)
	return nil
}

type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, notificationType models.NotificationType, recipientUserId int, subject string, body string) error {
	return nil
}
