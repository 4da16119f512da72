package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

type BookingList struct {
	*collection[domain.Booking]

	api      ports.BookingAPI
	notifier *BookingNotifier
}

func NewBookingList(session *SessionManager, api ports.BookingAPI, notifier *BookingNotifier, alerter ports.Alerter, logger hclog.Logger) *BookingList {
	list := &BookingList{api: api, notifier: notifier}
	list.collection = newCollection[domain.Booking]("bookings", session, api.ListBookings, alerter, logger)
	return list
}

// Book reserves course for the signed-in user and schedules the
// confirmation notification.
func (l *BookingList) Book(ctx context.Context, course domain.Course) (domain.Booking, error) {
	if !l.session.IsAuthenticated() {
		return domain.Booking{}, fmt.Errorf("%w: please log in to book this course", domain.ErrNotAuthenticated)
	}
	if course.ID == "" {
		return domain.Booking{}, fmt.Errorf("%w: course id is required", domain.ErrValidation)
	}

	var booking domain.Booking
	err := l.mutate(ctx, "create booking", false, func(ctx context.Context, token string) error {
		created, err := l.api.CreateBooking(ctx, token, course.ID, domain.BookingConfirmed)
		if err != nil {
			return err
		}
		booking = created
		if booking.Course.Name == "" {
			booking.Course = course
		}

		if l.notifier != nil {
			if _, notifyErr := l.notifier.BookingConfirmed(ctx, course); notifyErr != nil {
				l.logger.Warn("booking saved but notification could not be scheduled", "error", notifyErr)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

// ToggleStatus flips a listed booking between Confirmed and Pending.
func (l *BookingList) ToggleStatus(ctx context.Context, id domain.BookingID) (domain.BookingStatus, error) {
	booking, ok := domain.FindBooking(l.Items(), id)
	if !ok {
		return "", fmt.Errorf("toggle %q: %w", id, domain.ErrBookingNotFound)
	}

	next := booking.Status.Toggle()
	err := l.mutate(ctx, "update booking", false, func(ctx context.Context, token string) error {
		return l.api.UpdateBookingStatus(ctx, token, id, next)
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

func (l *BookingList) Delete(ctx context.Context, id domain.BookingID) error {
	return l.mutate(ctx, "delete booking", true, func(ctx context.Context, token string) error {
		return l.api.DeleteBooking(ctx, token, id)
	})
}

// IsRateLimited reports whether err is the backend's 429 notice.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
