package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

const (
	bookingNotificationTitle = "Booking Confirmed ✅"
	bookingNotificationDelay = time.Second
)

// BookingNotifier schedules the local notification shown after a booking.
type BookingNotifier struct {
	repo  ports.NotificationRepository
	clock ports.Clock
	newID func() string
}

func NewBookingNotifier(repo ports.NotificationRepository, clock ports.Clock) *BookingNotifier {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &BookingNotifier{repo: repo, clock: clock, newID: uuid.NewString}
}

func (n *BookingNotifier) BookingConfirmed(ctx context.Context, course domain.Course) (domain.Notification, error) {
	now := n.clock.Now()
	notification := domain.Notification{
		ID:        domain.NotificationID(n.newID()),
		Title:     bookingNotificationTitle,
		Body:      fmt.Sprintf("You've booked %q successfully!", course.Name),
		CourseID:  course.ID,
		FireAt:    now.Add(bookingNotificationDelay),
		CreatedAt: now,
	}

	if err := n.repo.Save(ctx, notification); err != nil {
		return domain.Notification{}, fmt.Errorf("schedule booking notification: %w", err)
	}
	return notification, nil
}

// Due lists scheduled notifications whose fire time has passed.
func (n *BookingNotifier) Due(ctx context.Context) ([]domain.Notification, error) {
	all, err := n.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	now := n.clock.Now()
	due := make([]domain.Notification, 0, len(all))
	for _, notification := range all {
		if notification.Due(now) {
			due = append(due, notification)
		}
	}
	return due, nil
}

func (n *BookingNotifier) All(ctx context.Context) ([]domain.Notification, error) {
	all, err := n.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return all, nil
}

func (n *BookingNotifier) Clear(ctx context.Context) error {
	if err := n.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}
