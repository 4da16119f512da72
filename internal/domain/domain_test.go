package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAuthenticatedOnlyByToken(t *testing.T) {
	assert.False(t, Session{User: &UserProfile{Username: "sam"}}.IsAuthenticated())
	assert.True(t, Session{Token: "abc", User: &UserProfile{Username: "sam"}}.IsAuthenticated())
	assert.False(t, Session{}.IsAdmin())
	assert.True(t, Session{Token: "abc", User: &UserProfile{IsAdmin: true}}.IsAdmin())
}

func TestSessionCloneDoesNotShareUser(t *testing.T) {
	original := Session{Token: "abc", User: &UserProfile{Username: "sam"}}
	clone := original.Clone()
	clone.User.Username = "changed"

	assert.Equal(t, "sam", original.User.Username)
}

func TestBookingStatusToggle(t *testing.T) {
	tests := []struct {
		name   string
		status BookingStatus
		want   BookingStatus
	}{
		{name: "confirmed becomes pending", status: BookingConfirmed, want: BookingPending},
		{name: "pending becomes confirmed", status: BookingPending, want: BookingConfirmed},
		{name: "unknown becomes confirmed", status: BookingStatus("Cancelled"), want: BookingConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Toggle())
		})
	}
}

func TestCourseValidate(t *testing.T) {
	valid := Course{Name: "Sunrise Flow", Description: "Gentle start", Time: "Monday 7:00 AM"}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.Time = "   "
	err := missing.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "required fields")
}

func TestRegionMatches(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "exact", a: "New Farm", b: "New Farm", want: true},
		{name: "case insensitive", a: "south bank", b: "South Bank", want: true},
		{name: "detected contains region", a: "South Brisbane QLD", b: "South Brisbane", want: true},
		{name: "region contains detected", a: "Kelvin", b: "Kelvin grove", want: true},
		{name: "no overlap", a: "Toowong", b: "New Farm", want: false},
		{name: "blank never matches", a: "", b: "New Farm", want: false},
		{name: "whitespace never matches", a: "New Farm", b: "  ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionMatches(tt.a, tt.b))
		})
	}
}

func TestMatchRegionReturnsAllowListedName(t *testing.T) {
	region, ok := MatchRegion("fortitude valley", DefaultRegions)
	require.True(t, ok)
	assert.Equal(t, "Fortitude Valley", region)

	_, ok = MatchRegion("Toowong", DefaultRegions)
	assert.False(t, ok)
}

func TestContainsAnyRegionIsOneDirectional(t *testing.T) {
	assert.True(t, ContainsAnyRegion("West End, South Brisbane", DefaultRegions))
	assert.False(t, ContainsAnyRegion("Kelvin", DefaultRegions))
	assert.False(t, ContainsAnyRegion("", DefaultRegions))
}

func TestAddressRegionName(t *testing.T) {
	assert.Equal(t, "New Farm", Address{District: "New Farm", Subregion: "Brisbane", City: "Brisbane"}.RegionName())
	assert.Equal(t, "Brisbane", Address{Subregion: "Brisbane", City: "Brisbane City"}.RegionName())
	assert.Equal(t, "Brisbane City", Address{City: "Brisbane City"}.RegionName())
	assert.Empty(t, Address{}.RegionName())
}

func TestAPIErrorRateLimitedMatching(t *testing.T) {
	limited := fmt.Errorf("delete booking: %w", &APIError{Status: http.StatusTooManyRequests, Message: "Slow down"})
	assert.True(t, errors.Is(limited, ErrRateLimited))
	assert.Equal(t, "Slow down", UserMessage(limited, "fallback"))

	other := &APIError{Status: http.StatusBadRequest, Message: "Course full"}
	assert.False(t, errors.Is(other, ErrRateLimited))
	assert.Equal(t, "status 500", (&APIError{Status: 500}).Error())
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Equal(t, "Invalid response from server", UserMessage(fmt.Errorf("login: %w", ErrInvalidResponse), "Login failed"))
	assert.Equal(t, "Login failed", UserMessage(errors.New("dial tcp: refused"), "Login failed"))
	assert.Equal(t, "boom", UserMessage(errors.New("boom"), ""))
	assert.Empty(t, UserMessage(nil, "unused"))
}

func TestNotificationDue(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	assert.True(t, Notification{FireAt: now}.Due(now))
	assert.False(t, Notification{FireAt: now.Add(time.Second)}.Due(now))
}
