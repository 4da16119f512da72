package domain

import (
	"fmt"
	"strings"
)

type CourseID string

type Location struct {
	Suburb string
	Park   string
	Link   string
}

type Course struct {
	ID          CourseID
	Name        string
	Description string
	Time        string
	Location    Location
}

func (c Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Description) == "" || strings.TrimSpace(c.Time) == "" {
		return fmt.Errorf("%w: please fill in all required fields", ErrValidation)
	}

	return nil
}

func FindCourse(courses []Course, id CourseID) (int, bool) {
	for i, course := range courses {
		if course.ID == id {
			return i, true
		}
	}
	return -1, false
}
