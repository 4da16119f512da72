package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const DefaultLinkScheme = "parkyoga"

// CourseLink builds the deep link that opens the course list focused on id.
func CourseLink(scheme string, id CourseID) string {
	if scheme == "" {
		scheme = DefaultLinkScheme
	}

	link := url.URL{
		Scheme:   scheme,
		Host:     "course",
		RawQuery: url.Values{"id": []string{string(id)}}.Encode(),
	}
	return link.String()
}

// ParseCourseLink extracts the course id from links like
// parkyoga://course?id=42 or exp://host/--/course?id=42.
func ParseCourseLink(raw string) (CourseID, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCourseLink, err)
	}

	if !isCourseTarget(parsed) {
		return "", fmt.Errorf("%w: %q does not point at a course", ErrInvalidCourseLink, raw)
	}

	id := strings.TrimSpace(parsed.Query().Get("id"))
	if id == "" {
		return "", fmt.Errorf("%w: %q has no course id", ErrInvalidCourseLink, raw)
	}

	return CourseID(id), nil
}

// isCourseTarget accepts parkyoga://course and any link whose last path
// segment is exactly "course".
func isCourseTarget(link *url.URL) bool {
	if link.Host == "course" {
		return true
	}
	trimmed := strings.TrimRight(link.Path, "/")
	return trimmed != "" && path.Base(trimmed) == "course"
}
