package notify

import (
	"context"
	"errors"

	"mbti-bot/internal/domain"
)

// Notifier define la interfaz para la entrega privada del reporte final.
type Notifier interface {
	SendReport(ctx context.Context, to string, report domain.Report) error
}

type disabledNotifier struct {
	reason string
}

func NewDisabledNotifier(reason string) Notifier {
	return &disabledNotifier{reason: reason}
}

func (n *disabledNotifier) SendReport(_ context.Context, _ string, _ domain.Report) error {
	if n.reason == "" {
		return errors.New("report notifier disabled")
	}
	return errors.New(n.reason)
}
