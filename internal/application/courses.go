package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

// HighlightFor is how long a deep-linked course stays highlighted.
const HighlightFor = 3 * time.Second

type CourseList struct {
	*collection[domain.Course]

	api        ports.CourseAPI
	clock      ports.Clock
	linkScheme string

	filterMu       sync.Mutex
	filter         ports.CourseFilter
	highlighted    domain.CourseID
	highlightUntil time.Time
}

func NewCourseList(session *SessionManager, api ports.CourseAPI, alerter ports.Alerter, clock ports.Clock, logger hclog.Logger) *CourseList {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	list := &CourseList{api: api, clock: clock, linkScheme: domain.DefaultLinkScheme}
	list.collection = newCollection[domain.Course]("courses", session, list.fetch, alerter, logger)
	return list
}

func (l *CourseList) WithLinkScheme(scheme string) *CourseList {
	if scheme != "" {
		l.linkScheme = scheme
	}
	return l
}

func (l *CourseList) fetch(ctx context.Context, token string) ([]domain.Course, error) {
	return l.api.ListCourses(ctx, token, l.Filter())
}

func (l *CourseList) Filter() ports.CourseFilter {
	l.filterMu.Lock()
	defer l.filterMu.Unlock()
	return l.filter
}

// Search narrows the list to one suburb and refetches.
func (l *CourseList) Search(ctx context.Context, suburb string) error {
	l.filterMu.Lock()
	l.filter = ports.CourseFilter{Suburb: strings.TrimSpace(suburb)}
	l.highlighted = ""
	l.filterMu.Unlock()

	return l.Refresh(ctx)
}

func (l *CourseList) ClearSearch(ctx context.Context) error {
	return l.Search(ctx, "")
}

func (l *CourseList) Create(ctx context.Context, course domain.Course) error {
	if err := course.Validate(); err != nil {
		return err
	}
	return l.mutate(ctx, "create course", true, func(ctx context.Context, token string) error {
		_, err := l.api.CreateCourse(ctx, token, course)
		return err
	})
}

func (l *CourseList) Update(ctx context.Context, course domain.Course) error {
	if course.ID == "" {
		return fmt.Errorf("%w: course id is required", domain.ErrValidation)
	}
	if err := course.Validate(); err != nil {
		return err
	}
	return l.mutate(ctx, "update course", true, func(ctx context.Context, token string) error {
		_, err := l.api.UpdateCourse(ctx, token, course)
		return err
	})
}

func (l *CourseList) Delete(ctx context.Context, id domain.CourseID) error {
	return l.mutate(ctx, "delete course", true, func(ctx context.Context, token string) error {
		return l.api.DeleteCourse(ctx, token, id)
	})
}

// Focus highlights the course with id and returns its position in the
// current list.
func (l *CourseList) Focus(id domain.CourseID) (int, error) {
	index, ok := domain.FindCourse(l.Items(), id)
	if !ok {
		return -1, fmt.Errorf("focus %q: %w", id, domain.ErrCourseNotFound)
	}

	l.filterMu.Lock()
	l.highlighted = id
	l.highlightUntil = l.clock.Now().Add(HighlightFor)
	l.filterMu.Unlock()

	return index, nil
}

// Highlighted returns the focused course while its highlight lasts.
func (l *CourseList) Highlighted() (domain.CourseID, bool) {
	l.filterMu.Lock()
	defer l.filterMu.Unlock()

	if l.highlighted == "" || !l.clock.Now().Before(l.highlightUntil) {
		return "", false
	}
	return l.highlighted, true
}

// Open follows a course deep link: it refetches and focuses the course.
func (l *CourseList) Open(ctx context.Context, link string) (domain.Course, int, error) {
	id, err := domain.ParseCourseLink(link)
	if err != nil {
		return domain.Course{}, -1, err
	}
	if err := l.Refresh(ctx); err != nil {
		return domain.Course{}, -1, err
	}

	index, err := l.Focus(id)
	if err != nil {
		return domain.Course{}, -1, err
	}
	return l.Items()[index], index, nil
}

// Share builds the message a user sends to invite someone to a course.
func (l *CourseList) Share(id domain.CourseID) (string, error) {
	items := l.Items()
	index, ok := domain.FindCourse(items, id)
	if !ok {
		return "", fmt.Errorf("share %q: %w", id, domain.ErrCourseNotFound)
	}
	return ShareMessage(items[index], domain.CourseLink(l.linkScheme, id)), nil
}

func ShareMessage(course domain.Course, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Join me for %q", course.Name)
	if course.Time != "" {
		fmt.Fprintf(&b, " at %s", course.Time)
	}
	if where := courseWhere(course.Location); where != "" {
		fmt.Fprintf(&b, " in %s", where)
	}
	fmt.Fprintf(&b, "!\n%s", link)
	return b.String()
}

func courseWhere(location domain.Location) string {
	switch {
	case location.Park != "" && location.Suburb != "":
		return location.Park + ", " + location.Suburb
	case location.Park != "":
		return location.Park
	default:
		return location.Suburb
	}
}
