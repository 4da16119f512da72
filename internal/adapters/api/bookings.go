package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

var _ ports.BookingAPI = Client{}

func (c Client) ListBookings(ctx context.Context, token string) ([]domain.Booking, error) {
	var payload []bookingPayload
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/bookings",
		token:    token,
		fallback: "Failed to fetch bookings",
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]domain.Booking, 0, len(payload))
	for _, item := range payload {
		booking, err := item.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w: %v", domain.ErrInvalidResponse, err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (c Client) CreateBooking(ctx context.Context, token string, courseID domain.CourseID, status domain.BookingStatus) (domain.Booking, error) {
	var payload bookingPayload
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/bookings",
		token:    token,
		body:     bookingRequest{BookingCourse: string(courseID), Status: string(status)},
		fallback: "Could not create booking",
	}, &payload)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	booking, err := payload.toDomain()
	if err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w: %v", domain.ErrInvalidResponse, err)
	}
	if booking.Course.ID == "" {
		booking.Course.ID = courseID
	}
	return booking, nil
}

func (c Client) UpdateBookingStatus(ctx context.Context, token string, id domain.BookingID, status domain.BookingStatus) error {
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/bookings/" + url.PathEscape(string(id)),
		token:    token,
		body:     statusRequest{Status: string(status)},
		fallback: "Failed to update booking",
	}, nil)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

func (c Client) DeleteBooking(ctx context.Context, token string, id domain.BookingID) error {
	err := c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/bookings/" + url.PathEscape(string(id)),
		token:    token,
		fallback: "Failed to delete booking",
	}, nil)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
