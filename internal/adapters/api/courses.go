package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

var _ ports.CourseAPI = Client{}

func (c Client) ListCourses(ctx context.Context, token string, filter ports.CourseFilter) ([]domain.Course, error) {
	var query url.Values
	if filter.Suburb != "" {
		query = url.Values{}
		query.Set("location.suburb", filter.Suburb)
	}

	var payload []coursePayload
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/courses",
		query:    query,
		token:    token,
		fallback: "Failed to fetch courses",
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	courses := make([]domain.Course, 0, len(payload))
	for _, item := range payload {
		courses = append(courses, item.toDomain())
	}
	return courses, nil
}

func (c Client) CreateCourse(ctx context.Context, token string, course domain.Course) (domain.Course, error) {
	var payload coursePayload
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/courses",
		token:    token,
		body:     courseRequestFromDomain(course),
		fallback: "Failed to save course",
	}, &payload)
	if err != nil {
		return domain.Course{}, fmt.Errorf("create course: %w", err)
	}
	return payload.toDomain(), nil
}

func (c Client) UpdateCourse(ctx context.Context, token string, course domain.Course) (domain.Course, error) {
	if course.ID == "" {
		return domain.Course{}, fmt.Errorf("update course: %w: course id is required", domain.ErrValidation)
	}

	var payload coursePayload
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/courses/" + url.PathEscape(string(course.ID)),
		token:    token,
		body:     courseRequestFromDomain(course),
		fallback: "Failed to save course",
	}, &payload)
	if err != nil {
		return domain.Course{}, fmt.Errorf("update course: %w", err)
	}

	updated := payload.toDomain()
	if updated.ID == "" {
		updated.ID = course.ID
	}
	return updated, nil
}

func (c Client) DeleteCourse(ctx context.Context, token string, id domain.CourseID) error {
	err := c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/courses/" + url.PathEscape(string(id)),
		token:    token,
		fallback: "Failed to delete course",
	}, nil)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
