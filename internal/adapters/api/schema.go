package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *userPayload `json:"user"`
}

type locationPayload struct {
	Suburb string `json:"suburb"`
	Park   string `json:"park"`
	Link   string `json:"link"`
}

// coursePayload accepts both the Mongo-style "_id" and a plain "id".
type coursePayload struct {
	MongoID     string          `json:"_id,omitempty"`
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Time        string          `json:"time"`
	Location    locationPayload `json:"location"`
}

type courseRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Time        string          `json:"time"`
	Location    locationPayload `json:"location"`
}

type bookingPayload struct {
	MongoID string          `json:"_id,omitempty"`
	ID      string          `json:"id,omitempty"`
	Course  json.RawMessage `json:"bookingCourse"`
	Status  string          `json:"status"`
}

type bookingRequest struct {
	BookingCourse string `json:"bookingCourse"`
	Status        string `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (p userPayload) toDomain() domain.UserProfile {
	return domain.UserProfile{Username: p.Username, Email: p.Email, IsAdmin: p.IsAdmin}
}

func (p coursePayload) toDomain() domain.Course {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	return domain.Course{
		ID:          domain.CourseID(id),
		Name:        p.Name,
		Description: p.Description,
		Time:        p.Time,
		Location: domain.Location{
			Suburb: p.Location.Suburb,
			Park:   p.Location.Park,
			Link:   p.Location.Link,
		},
	}
}

func courseRequestFromDomain(course domain.Course) courseRequest {
	return courseRequest{
		Name:        course.Name,
		Description: course.Description,
		Time:        course.Time,
		Location: locationPayload{
			Suburb: course.Location.Suburb,
			Park:   course.Location.Park,
			Link:   course.Location.Link,
		},
	}
}

// toDomain resolves bookingCourse, which the backend sends either populated
// or as a bare course id.
func (p bookingPayload) toDomain() (domain.Booking, error) {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	booking := domain.Booking{
		ID:     domain.BookingID(id),
		Status: domain.BookingStatus(p.Status),
	}

	raw := bytes.TrimSpace(p.Course)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var courseID string
		if err := json.Unmarshal(raw, &courseID); err != nil {
			return domain.Booking{}, fmt.Errorf("decode booking course id: %w", err)
		}
		booking.Course.ID = domain.CourseID(courseID)
	default:
		var course coursePayload
		if err := json.Unmarshal(raw, &course); err != nil {
			return domain.Booking{}, fmt.Errorf("decode booking course: %w", err)
		}
		booking.Course = course.toDomain()
	}

	return booking, nil
}
