package ports

import (
	"context"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

type NotificationRepository interface {
	Save(ctx context.Context, notification domain.Notification) error
	List(ctx context.Context) ([]domain.Notification, error)
	Clear(ctx context.Context) error
}

// Alerter surfaces a user-facing notice without failing the operation.
type Alerter interface {
	Alert(title, message string)
}
