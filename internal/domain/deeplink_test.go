package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseLinkRoundTrip(t *testing.T) {
	t.Parallel()

	link := CourseLink("", "64f1c0ffee")
	assert.Equal(t, "parkyoga://course?id=64f1c0ffee", link)

	id, err := ParseCourseLink(link)
	require.NoError(t, err)
	assert.Equal(t, CourseID("64f1c0ffee"), id)
}

func TestParseCourseLinkAcceptsPathForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want CourseID
	}{
		{name: "expo dev url", raw: "exp://127.0.0.1:8081/--/course?id=abc", want: "abc"},
		{name: "triple slash", raw: "parkyoga:///course?id=42", want: "42"},
		{name: "trailing slash", raw: "parkyoga:///course/?id=7", want: "7"},
		{name: "escaped id", raw: "parkyoga://course?id=a%20b", want: "a b"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCourseLink(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCourseLinkRejectsInvalidLinks(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"parkyoga://booking?id=1",
		"parkyoga://course",
		"parkyoga://course?id=",
		"https://x/notacourse?id=1",
		"parkyoga:///courses?id=1",
		"://bad",
	} {
		_, err := ParseCourseLink(raw)
		assert.ErrorIs(t, err, ErrInvalidCourseLink, raw)
	}
}
