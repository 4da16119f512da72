package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lynnxiaofeng/parkyoga/internal/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = apitest.User{Username: "alice", Email: "alice@example.com", Password: "lotus"}
	admin = apitest.User{Username: "root", Email: "admin@example.com", Password: "asana", IsAdmin: true}
)

type cliEnv struct {
	home    string
	backend *apitest.Backend
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	backend := apitest.NewServer(t)
	backend.SeedUser(alice)
	backend.SeedUser(admin)
	backend.SeedCourse(apitest.Course{ID: "c1", Name: "Sunrise Flow", Description: "Gentle", Time: "07:00", Location: apitest.Location{Suburb: "New Farm", Park: "New Farm Park"}})
	backend.SeedCourse(apitest.Course{ID: "c2", Name: "Power Hour", Description: "Strong", Time: "18:00", Location: apitest.Location{Suburb: "South Brisbane", Park: "Musgrave Park"}})

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PARKYOGA_CONFIG", "")
	t.Setenv("PARKYOGA_API_BASE_URL", backend.URL)
	t.Setenv("PARKYOGA_STORE_PASS_DIR", filepath.Join(home, "no-pass-store"))
	t.Setenv("PARKYOGA_LOCATION_ENABLED", "")

	return &cliEnv{home: home, backend: backend}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeCLI(t, nil, args...)
}

func (e *cliEnv) signIn(t *testing.T, user apitest.User) {
	t.Helper()
	_, _, err := e.run(t, "login", "--email", user.Email, "--password", user.Password)
	require.NoError(t, err)
}

func executeCLI(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionPrintsBuildVersion(t *testing.T) {
	newCLIEnv(t)

	stdout, _, err := executeCLI(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestLoginPersistsSessionAcrossInvocations(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run(t, "login", "--email", alice.Email, "--password", alice.Password)
	require.NoError(t, err)
	assert.Equal(t, "Signed in as alice\n", stdout)

	stdout, _, err = env.run(t, "profile")
	require.NoError(t, err)
	assert.Contains(t, stdout, "alice")
	assert.Contains(t, stdout, "email: alice@example.com")
	assert.NotContains(t, stdout, "[admin]")

	stdout, _, err = env.run(t, "profile", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "signed_in: true")
	assert.Contains(t, stdout, "username: alice")
}

func TestLoginWithWrongPasswordShowsServerMessage(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "login", "--email", alice.Email, "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	stdout, _, err := env.run(t, "profile")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Please login or register to view your profile")
}

func TestLoginPromptsForMissingCredentials(t *testing.T) {
	env := newCLIEnv(t)

	stdout, stderr, err := executeCLI(t, strings.NewReader(alice.Email+"\n"+alice.Password+"\n"), "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Email: ")
	assert.Contains(t, stderr, "Password: ")
	assert.Equal(t, "Signed in as alice\n", stdout)
	assert.Len(t, env.backend.Requests(apitest.RouteLogin), 1)
}

func TestRegisterNeverCreatesAdminAndSignsIn(t *testing.T) {
	env := newCLIEnv(t)

	stdout, stderr, err := env.run(t, "register",
		"--username", "sam",
		"--email", "sam@example.com",
		"--password", "pw",
		"--admin",
	)
	require.NoError(t, err)
	assert.Equal(t, "Registered and signed in as sam\n", stdout)
	assert.Contains(t, stderr, "Administrator accounts cannot be requested")

	user, ok := env.backend.User("sam@example.com")
	require.True(t, ok)
	assert.False(t, user.IsAdmin)

	registered := env.backend.Requests(apitest.RouteRegister)
	require.Len(t, registered, 1)
	assert.Equal(t, false, registered[0].Body["is_admin"])
}

func TestRegisterPromptsAndChecksConfirmation(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := executeCLI(t, strings.NewReader("sam\nsam@example.com\npw\nother\n"), "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
	assert.Empty(t, env.backend.Requests(apitest.RouteRegister))

	_, _, err = env.run(t, "register", "--username", "sam", "--email", alice.Email, "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User already exists")
}

func TestLogoutForgetsSession(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)

	stdout, _, err := env.run(t, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", stdout)

	stdout, _, err = env.run(t, "profile", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"signed_in": false, "is_admin": false}`, stdout)
}

func TestCourseListRequiresSession(t *testing.T) {
	env := newCLIEnv(t)

	stdout, stderr, err := env.run(t, "course", "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Log in to see courses.")
	assert.Contains(t, stdout, "No courses found.")
	assert.Empty(t, env.backend.Requests(apitest.RouteListCourses))
}

func TestCourseListShowsCourses(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)

	stdout, _, err := env.run(t, "course", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "courses: 2")
	assert.Contains(t, stdout, "Sunrise Flow")
	assert.Contains(t, stdout, "where: Musgrave Park, South Brisbane")

	stdout, _, err = env.run(t, "course", "list", "--suburb", "New Farm", "--json")
	require.NoError(t, err)
	var courses []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Sunrise Flow", courses[0]["name"])

	requests := env.backend.Requests(apitest.RouteListCourses)
	require.Len(t, requests, 2)
	assert.Equal(t, "location.suburb=New+Farm", requests[1].Query)
}

func TestOutputFormatsAreMutuallyExclusive(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "course", "list", "--json", "--yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestRateLimitIsANoticeNotAFailure(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)
	env.backend.Fail(apitest.RouteListCourses, http.StatusTooManyRequests, "Too many requests, please try again later")

	stdout, stderr, err := env.run(t, "course", "list")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Too Many Requests")
	assert.Contains(t, stderr, "Too many requests, please try again later")
}

func TestCourseBookSchedulesNotification(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)

	stdout, _, err := env.run(t, "course", "book", "c1")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Booked "Sunrise Flow"`)
	assert.Contains(t, stdout, "Confirmed")

	stdout, _, err = env.run(t, "notifications", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Booking Confirmed ✅")
	assert.Contains(t, stdout, `You've booked "Sunrise Flow" successfully!`)

	stdout, _, err = env.run(t, "booking", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sunrise Flow")
	assert.Contains(t, stdout, "[Confirmed]")

	_, _, err = env.run(t, "notifications", "clear")
	require.NoError(t, err)
	stdout, _, err = env.run(t, "notifications", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, stdout)
}

func TestCourseBookFailureShowsMessageWithoutNotification(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)
	env.backend.Fail(apitest.RouteCreateBooking, http.StatusBadRequest, "Course full")

	_, _, err := env.run(t, "course", "book", "c1")
	require.Error(t, err)
	assert.Equal(t, "book course: Course full", err.Error())

	stdout, _, err := env.run(t, "notifications", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing scheduled.")
}

func TestCourseBookRequiresLogin(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "course", "book", "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please log in to book this course")
	assert.Empty(t, env.backend.Requests(apitest.RouteCreateBooking))
}

func TestCourseAdministration(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)

	_, _, err := env.run(t, "course", "delete", "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "administrator privileges required")
	assert.Empty(t, env.backend.Requests(apitest.RouteDeleteCourse))

	env.signIn(t, admin)

	_, _, err = env.run(t, "course", "create", "--name", "Moonlight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please fill in all required fields")

	stdout, _, err := env.run(t, "course", "create",
		"--name", "Moonlight",
		"--description", "Calm",
		"--time", "21:00",
		"--suburb", "Kelvin Grove",
	)
	require.NoError(t, err)
	assert.Equal(t, "Course \"Moonlight\" created\n", stdout)
	require.Len(t, env.backend.Courses(), 3)

	stdout, _, err = env.run(t, "course", "update", "c2", "--time", "18:30")
	require.NoError(t, err)
	assert.Equal(t, "Course \"Power Hour\" updated\n", stdout)
	updated := env.backend.Requests(apitest.RouteUpdateCourse)
	require.Len(t, updated, 1)
	assert.Equal(t, "18:30", updated[0].Body["time"])
	assert.Equal(t, "Strong", updated[0].Body["description"])

	stdout, _, err = env.run(t, "course", "delete", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Course c1 deleted\n", stdout)
	assert.Len(t, env.backend.Courses(), 2)
}

func TestCourseOpenHighlightsLinkedCourse(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)

	stdout, _, err := env.run(t, "course", "open", "parkyoga://course?id=c2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "> Power Hour")
	assert.NotContains(t, stdout, "> Sunrise Flow")

	_, _, err = env.run(t, "course", "open", "parkyoga://course")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid course link")
}

func TestCourseShare(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, alice)

	stdout, _, err := env.run(t, "course", "share", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Join me for \"Sunrise Flow\" at 07:00 in New Farm Park, New Farm!\nparkyoga://course?id=c1\n", stdout)
}

func TestBookingToggleAndDelete(t *testing.T) {
	env := newCLIEnv(t)
	id := env.backend.SeedBooking(apitest.Booking{CourseID: "c1", Status: "Confirmed"})
	env.signIn(t, alice)

	stdout, _, err := env.run(t, "booking", "toggle", id)
	require.NoError(t, err)
	assert.Equal(t, "Booking "+id+" is now Pending\n", stdout)

	_, _, err = env.run(t, "booking", "delete", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "administrator privileges required")

	env.signIn(t, admin)
	_, _, err = env.run(t, "booking", "delete", id)
	require.NoError(t, err)
	assert.Empty(t, env.backend.Bookings())
}

func TestRecommendUsesDetectedRegion(t *testing.T) {
	env := newCLIEnv(t)

	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"suburb":"South Brisbane","city":"Brisbane"}}`))
	}))
	t.Cleanup(geocoder.Close)

	t.Setenv("PARKYOGA_LOCATION_ENABLED", "true")
	t.Setenv("PARKYOGA_LOCATION_LATITUDE", "-27.4810")
	t.Setenv("PARKYOGA_LOCATION_LONGITUDE", "153.0234")
	t.Setenv("PARKYOGA_LOCATION_GEOCODER_URL", geocoder.URL)

	stdout, _, err := env.run(t, "recommend")
	require.NoError(t, err)
	assert.Contains(t, stdout, "near: South Brisbane")
	assert.Contains(t, stdout, "Power Hour")
	assert.Contains(t, stdout, "Sunrise Flow")

	stdout, _, err = env.run(t, "recommend", "--json")
	require.NoError(t, err)
	var snapshot map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &snapshot))
	assert.Equal(t, "granted", snapshot["state"])
	courses, ok := snapshot["courses"].([]any)
	require.True(t, ok)
	assert.Len(t, courses, 2)
}

func TestRecommendWithoutPermission(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("PARKYOGA_LOCATION_ENABLED", "false")

	stdout, _, err := env.run(t, "recommend")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Location access denied.")
	assert.Contains(t, stdout, "No recommendations right now.")

	stdout, _, err = env.run(t, "recommend", "--manual")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Showing random picks instead.")
}

func TestRecommendRefreshRequiresGrantedLocation(t *testing.T) {
	env := newCLIEnv(t)

	var lookups atomic.Int32
	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"suburb":"New Farm","city":"Brisbane"}}`))
	}))
	t.Cleanup(geocoder.Close)

	t.Setenv("PARKYOGA_LOCATION_LATITUDE", "-27.4670")
	t.Setenv("PARKYOGA_LOCATION_LONGITUDE", "153.0510")
	t.Setenv("PARKYOGA_LOCATION_GEOCODER_URL", geocoder.URL)

	stdout, stderr, err := env.run(t, "recommend", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Location access has not been granted")
	assert.Contains(t, stdout, "No recommendations right now.")
	assert.Zero(t, lookups.Load())

	t.Setenv("PARKYOGA_LOCATION_ENABLED", "true")
	stdout, _, err = env.run(t, "recommend", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "near: New Farm")
	assert.Contains(t, stdout, "Sunrise Flow")
	assert.Equal(t, int32(1), lookups.Load())
}
