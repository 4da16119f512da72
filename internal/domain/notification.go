package domain

import "time"

type NotificationID string

type Notification struct {
	ID        NotificationID
	Title     string
	Body      string
	CourseID  CourseID
	FireAt    time.Time
	CreatedAt time.Time
}

func (n Notification) Due(now time.Time) bool {
	return !n.FireAt.After(now)
}
