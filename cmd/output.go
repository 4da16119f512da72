package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lynnxiaofeng/parkyoga/internal/application"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFormat struct {
	json bool
	yaml bool
}

func (f *outputFormat) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&f.yaml, "yaml", false, "Render YAML output")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func (f outputFormat) machine() bool {
	return f.json || f.yaml
}

func (f outputFormat) write(w io.Writer, v any) error {
	if f.yaml {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeScreen prints either the machine form of v or the rendered screen.
func writeScreen(cmd *cobra.Command, format outputFormat, v any, render func() (string, error)) error {
	if format.machine() {
		return format.write(cmd.OutOrStdout(), v)
	}

	rendered, err := render()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

type locationView struct {
	Suburb string `json:"suburb" yaml:"suburb"`
	Park   string `json:"park" yaml:"park"`
	Link   string `json:"link,omitempty" yaml:"link,omitempty"`
}

type courseView struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Time        string       `json:"time" yaml:"time"`
	Location    locationView `json:"location" yaml:"location"`
}

type bookingView struct {
	ID     string     `json:"id" yaml:"id"`
	Status string     `json:"status" yaml:"status"`
	Course courseView `json:"course" yaml:"course"`
}

type profileView struct {
	SignedIn bool   `json:"signed_in" yaml:"signed_in"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	IsAdmin  bool   `json:"is_admin" yaml:"is_admin"`
}

type recommendationView struct {
	State             string       `json:"state" yaml:"state"`
	Region            string       `json:"region,omitempty" yaml:"region,omitempty"`
	ManuallyRequested bool         `json:"manually_requested" yaml:"manually_requested"`
	Courses           []courseView `json:"courses" yaml:"courses"`
}

type notificationView struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Body     string    `json:"body" yaml:"body"`
	CourseID string    `json:"course_id,omitempty" yaml:"course_id,omitempty"`
	FireAt   time.Time `json:"fire_at" yaml:"fire_at"`
	Due      bool      `json:"due" yaml:"due"`
}

func toCourseView(course domain.Course) courseView {
	return courseView{
		ID:          string(course.ID),
		Name:        course.Name,
		Description: course.Description,
		Time:        course.Time,
		Location: locationView{
			Suburb: course.Location.Suburb,
			Park:   course.Location.Park,
			Link:   course.Location.Link,
		},
	}
}

func toCourseViews(courses []domain.Course) []courseView {
	views := make([]courseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, toCourseView(course))
	}
	return views
}

func toBookingViews(bookings []domain.Booking) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for _, booking := range bookings {
		views = append(views, bookingView{
			ID:     string(booking.ID),
			Status: string(booking.Status),
			Course: toCourseView(booking.Course),
		})
	}
	return views
}

func toProfileView(profile application.Profile) profileView {
	return profileView(profile)
}

func toRecommendationView(snapshot application.RecommendationSnapshot) recommendationView {
	return recommendationView{
		State:             string(snapshot.State),
		Region:            snapshot.Region,
		ManuallyRequested: snapshot.ManuallyRequested,
		Courses:           toCourseViews(snapshot.Courses),
	}
}

func toNotificationViews(notifications []domain.Notification, now time.Time) []notificationView {
	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, notificationView{
			ID:       string(n.ID),
			Title:    n.Title,
			Body:     n.Body,
			CourseID: string(n.CourseID),
			FireAt:   n.FireAt,
			Due:      n.Due(now),
		})
	}
	return views
}
