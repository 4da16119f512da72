package ports

import (
	"context"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

type Registration struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

type LoginResult struct {
	Token string
	User  domain.UserProfile
}

type AuthAPI interface {
	Register(ctx context.Context, req Registration) error
	Login(ctx context.Context, email, password string) (LoginResult, error)
}

type CourseFilter struct {
	Suburb string
}

// CourseAPI calls are authorized with token when it is non-empty.
type CourseAPI interface {
	ListCourses(ctx context.Context, token string, filter CourseFilter) ([]domain.Course, error)
	CreateCourse(ctx context.Context, token string, course domain.Course) (domain.Course, error)
	UpdateCourse(ctx context.Context, token string, course domain.Course) (domain.Course, error)
	DeleteCourse(ctx context.Context, token string, id domain.CourseID) error
}

type BookingAPI interface {
	ListBookings(ctx context.Context, token string) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, token string, courseID domain.CourseID, status domain.BookingStatus) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, token string, id domain.BookingID, status domain.BookingStatus) error
	DeleteBooking(ctx context.Context, token string, id domain.BookingID) error
}
