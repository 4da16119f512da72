package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lynnxiaofeng/parkyoga/internal/application"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

type CourseOptions struct {
	Suburb      string
	Highlighted domain.CourseID
}

func Courses(courses []domain.Course, opts CourseOptions) (string, error) {
	return render(func(s styles) string { return coursesView(courses, opts, s) })
}

func Bookings(bookings []domain.Booking) (string, error) {
	return render(func(s styles) string { return bookingsView(bookings, s) })
}

func Recommendations(snapshot application.RecommendationSnapshot) (string, error) {
	return render(func(s styles) string { return recommendationsView(snapshot, s) })
}

func Profile(profile application.Profile) (string, error) {
	return render(func(s styles) string { return profileView(profile, s) })
}

func Notifications(notifications []domain.Notification, now time.Time) (string, error) {
	return render(func(s styles) string { return notificationsView(notifications, now, s) })
}

func coursesView(courses []domain.Course, opts CourseOptions, s styles) string {
	header := fmt.Sprintf("courses: %d", len(courses))
	if opts.Suburb != "" {
		header += fmt.Sprintf("  suburb: %s", opts.Suburb)
	}
	lines := []string{s.title.Render("Park Yoga Courses"), s.header.Render(header)}

	if len(courses) == 0 {
		lines = append(lines, s.empty.Render("No courses found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, course := range courses {
		lines = append(lines, s.section.Render(courseBlock(course, course.ID == opts.Highlighted, s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func courseBlock(course domain.Course, focused bool, s styles) string {
	title := s.name.Render(course.Name)
	if focused {
		title = s.focused.Render("> " + course.Name)
	}

	parts := []string{title}
	if desc := strings.TrimSpace(course.Description); desc != "" {
		parts = append(parts, s.detail.Render(desc))
	}
	parts = append(parts, s.detail.Render(fmt.Sprintf("time: %s", orDash(course.Time))))
	parts = append(parts, s.detail.Render(fmt.Sprintf("where: %s", orDash(where(course.Location)))))
	if course.Location.Link != "" {
		parts = append(parts, s.meta.Render(fmt.Sprintf("map: %s", course.Location.Link)))
	}
	parts = append(parts, s.meta.Render(fmt.Sprintf("id: %s", course.ID)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func bookingsView(bookings []domain.Booking, s styles) string {
	lines := []string{
		s.title.Render("My Bookings"),
		s.header.Render(fmt.Sprintf("bookings: %d", len(bookings))),
	}

	if len(bookings) == 0 {
		lines = append(lines, s.empty.Render("No bookings yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, booking := range bookings {
		name := booking.Course.Name
		if name == "" {
			name = fmt.Sprintf("course %s", booking.Course.ID)
		}
		block := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, s.name.Render(name), " ", statusBadge(booking.Status, s)),
			s.detail.Render(fmt.Sprintf("time: %s", orDash(booking.Course.Time))),
			s.detail.Render(fmt.Sprintf("where: %s", orDash(where(booking.Course.Location)))),
			s.meta.Render(fmt.Sprintf("id: %s", booking.ID)),
		)
		lines = append(lines, s.section.Render(block))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusBadge(status domain.BookingStatus, s styles) string {
	switch status {
	case domain.BookingConfirmed:
		return s.confirmed.Render("[" + string(status) + "]")
	case domain.BookingPending:
		return s.pending.Render("[" + string(status) + "]")
	default:
		return s.meta.Render("[unknown]")
	}
}

func recommendationsView(snapshot application.RecommendationSnapshot, s styles) string {
	lines := []string{s.title.Render("Recommended for You")}

	switch snapshot.State {
	case domain.LocationGranted:
		if snapshot.Region != "" {
			lines = append(lines, s.header.Render(fmt.Sprintf("near: %s", snapshot.Region)))
		} else {
			lines = append(lines, s.header.Render("near: unknown area"))
		}
	case domain.LocationDenied:
		lines = append(lines, s.warning.Render("Location access denied."))
		if snapshot.ManuallyRequested && len(snapshot.Courses) > 0 {
			lines = append(lines, s.header.Render("Showing random picks instead."))
		}
	case domain.LocationError:
		lines = append(lines, s.warning.Render("Could not determine your location."))
		if len(snapshot.Courses) > 0 {
			lines = append(lines, s.header.Render("Showing random picks instead."))
		}
	case domain.LocationLoading:
		lines = append(lines, s.header.Render("Finding courses near you..."))
	}

	if len(snapshot.Courses) == 0 {
		lines = append(lines, s.empty.Render("No recommendations right now."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, course := range snapshot.Courses {
		lines = append(lines, s.section.Render(courseBlock(course, false, s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func profileView(profile application.Profile, s styles) string {
	title := s.title.Render("Profile")
	if !profile.SignedIn {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("Please login or register to view your profile"))
	}

	name := s.name.Render(profile.Username)
	if profile.IsAdmin {
		name = lipgloss.JoinHorizontal(lipgloss.Top, name, " ", s.admin.Render("[admin]"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		name,
		s.detail.Render(fmt.Sprintf("email: %s", profile.Email)),
	)
}

func notificationsView(notifications []domain.Notification, now time.Time, s styles) string {
	lines := []string{
		s.title.Render("Notifications"),
		s.header.Render(fmt.Sprintf("notifications: %d", len(notifications))),
	}

	if len(notifications) == 0 {
		lines = append(lines, s.empty.Render("Nothing scheduled."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, n := range notifications {
		when := s.meta.Render("delivered " + n.FireAt.Local().Format("15:04 on 02 Jan"))
		if !now.IsZero() && !n.Due(now) {
			when = s.pending.Render("scheduled for " + n.FireAt.Local().Format("15:04:05"))
		}
		block := lipgloss.JoinVertical(lipgloss.Left,
			s.name.Render(n.Title),
			s.detail.Render(n.Body),
			when,
		)
		lines = append(lines, s.section.Render(block))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func where(location domain.Location) string {
	switch {
	case location.Park != "" && location.Suburb != "":
		return location.Park + ", " + location.Suburb
	case location.Park != "":
		return location.Park
	default:
		return location.Suburb
	}
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
