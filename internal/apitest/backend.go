// Package apitest runs an in-memory Park Yoga backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	RouteRegister      = "register"
	RouteLogin         = "login"
	RouteListCourses   = "listCourses"
	RouteCreateCourse  = "createCourse"
	RouteUpdateCourse  = "updateCourse"
	RouteDeleteCourse  = "deleteCourse"
	RouteListBookings  = "listBookings"
	RouteCreateBooking = "createBooking"
	RouteUpdateBooking = "updateBooking"
	RouteDeleteBooking = "deleteBooking"
)

type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
	IsAdmin  bool   `json:"is_admin"`
}

type Location struct {
	Suburb string `json:"suburb"`
	Park   string `json:"park"`
	Link   string `json:"link"`
}

type Course struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Time        string   `json:"time"`
	Location    Location `json:"location"`
}

type Booking struct {
	ID       string `json:"_id"`
	CourseID string `json:"-"`
	Status   string `json:"status"`
	Owner    string `json:"-"`
}

type bookingView struct {
	ID     string `json:"_id"`
	Course any    `json:"bookingCourse"`
	Status string `json:"status"`
}

type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type failure struct {
	status  int
	message string
}

type Backend struct {
	URL string

	mu       sync.Mutex
	users    map[string]User
	tokens   map[string]string
	courses  []Course
	bookings []Booking
	failures map[string][]failure
	holds    map[string]chan struct{}
	requests map[string][]Request
}

// NewServer starts a backend bound to t's lifetime.
func NewServer(t testing.TB) *Backend {
	t.Helper()

	backend := &Backend{
		users:    map[string]User{},
		tokens:   map[string]string{},
		failures: map[string][]failure{},
		holds:    map[string]chan struct{}{},
		requests: map[string][]Request{},
	}
	server := httptest.NewServer(backend.Router())
	t.Cleanup(server.Close)
	backend.URL = server.URL

	return backend
}

func (b *Backend) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.intercept)
	r.HandleFunc("/users/register", b.handleRegister).Methods(http.MethodPost).Name(RouteRegister)
	r.HandleFunc("/users/login", b.handleLogin).Methods(http.MethodPost).Name(RouteLogin)
	r.HandleFunc("/courses", b.handleListCourses).Methods(http.MethodGet).Name(RouteListCourses)
	r.HandleFunc("/courses", b.handleCreateCourse).Methods(http.MethodPost).Name(RouteCreateCourse)
	r.HandleFunc("/courses/{id}", b.handleUpdateCourse).Methods(http.MethodPut).Name(RouteUpdateCourse)
	r.HandleFunc("/courses/{id}", b.handleDeleteCourse).Methods(http.MethodDelete).Name(RouteDeleteCourse)
	r.HandleFunc("/bookings", b.handleListBookings).Methods(http.MethodGet).Name(RouteListBookings)
	r.HandleFunc("/bookings", b.handleCreateBooking).Methods(http.MethodPost).Name(RouteCreateBooking)
	r.HandleFunc("/bookings/{id}", b.handleUpdateBooking).Methods(http.MethodPut).Name(RouteUpdateBooking)
	r.HandleFunc("/bookings/{id}", b.handleDeleteBooking).Methods(http.MethodDelete).Name(RouteDeleteBooking)
	return r
}

func (b *Backend) SeedUser(user User) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.users[strings.ToLower(user.Email)] = user
	token := "token-" + uuid.NewString()
	b.tokens[token] = strings.ToLower(user.Email)
	return token
}

func (b *Backend) SeedCourse(course Course) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	b.courses = append(b.courses, course)
	return course.ID
}

func (b *Backend) SeedBooking(booking Booking) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	b.bookings = append(b.bookings, booking)
	return booking.ID
}

// Fail makes the next request to route answer with status and an "error"
// body. Queued failures are consumed in order.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[route] = append(b.failures[route], failure{status: status, message: message})
}

// Hold blocks every request to route until the returned release is called.
// Entered receives one value per request that reached the hold.
func (b *Backend) Hold(route string) (entered <-chan struct{}, release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	gate := make(chan struct{})
	b.holds[route] = gate
	arrivals := make(chan struct{}, 16)
	b.holds[route+"/entered"] = arrivals

	var once sync.Once
	return arrivals, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.holds, route)
			delete(b.holds, route+"/entered")
			b.mu.Unlock()
			close(gate)
		})
	}
}

func (b *Backend) Requests(route string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Request(nil), b.requests[route]...)
}

func (b *Backend) Courses() []Course {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Course(nil), b.courses...)
}

func (b *Backend) Bookings() []Booking {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Booking(nil), b.bookings...)
}

func (b *Backend) User(email string) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[strings.ToLower(email)]
	return user, ok
}

func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := ""
		if current := mux.CurrentRoute(r); current != nil {
			route = current.GetName()
		}

		recorded := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = r.Body.Close()
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &recorded.Body)
			}
			r.Body = io.NopCloser(strings.NewReader(string(raw)))
		}

		b.mu.Lock()
		b.requests[route] = append(b.requests[route], recorded)
		gate := b.holds[route]
		entered := b.holds[route+"/entered"]
		var fail *failure
		if queued := b.failures[route]; len(queued) > 0 {
			fail = &queued[0]
			b.failures[route] = queued[1:]
		}
		b.mu.Unlock()

		if gate != nil {
			select {
			case entered <- struct{}{}:
			default:
			}
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if fail != nil {
			writeError(w, fail.status, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(req.Email)
	if _, exists := b.users[key]; exists {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	b.users[key] = User{Username: req.Username, Email: req.Email, Password: req.Password, IsAdmin: req.IsAdmin}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(req.Email)
	user, ok := b.users[key]
	if !ok || user.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := "token-" + uuid.NewString()
	b.tokens[token] = key
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (b *Backend) handleListCourses(w http.ResponseWriter, r *http.Request) {
	suburb := r.URL.Query().Get("location.suburb")

	b.mu.Lock()
	defer b.mu.Unlock()

	courses := make([]Course, 0, len(b.courses))
	for _, course := range b.courses {
		if suburb != "" && !strings.EqualFold(course.Location.Suburb, suburb) {
			continue
		}
		courses = append(courses, course)
	}
	writeJSON(w, http.StatusOK, courses)
}

func (b *Backend) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authorize(w, r, false); !ok {
		return
	}

	var course Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	course.ID = uuid.NewString()
	b.courses = append(b.courses, course)
	writeJSON(w, http.StatusCreated, course)
}

func (b *Backend) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authorize(w, r, false); !ok {
		return
	}

	var course Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := mux.Vars(r)["id"]
	for i := range b.courses {
		if b.courses[i].ID == id {
			course.ID = id
			b.courses[i] = course
			writeJSON(w, http.StatusOK, course)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Course not found")
}

func (b *Backend) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authorize(w, r, true); !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := mux.Vars(r)["id"]
	for i := range b.courses {
		if b.courses[i].ID == id {
			b.courses = append(b.courses[:i], b.courses[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Course deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Course not found")
}

func (b *Backend) handleListBookings(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authorize(w, r, false); !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	views := make([]bookingView, 0, len(b.bookings))
	for _, booking := range b.bookings {
		view := bookingView{ID: booking.ID, Status: booking.Status, Course: booking.CourseID}
		for _, course := range b.courses {
			if course.ID == booking.CourseID {
				view.Course = course
				break
			}
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (b *Backend) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	owner, ok := b.authorize(w, r, false)
	if !ok {
		return
	}

	var req struct {
		BookingCourse string `json:"bookingCourse"`
		Status        string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	booking := Booking{ID: uuid.NewString(), CourseID: req.BookingCourse, Status: req.Status, Owner: owner}
	b.bookings = append(b.bookings, booking)
	writeJSON(w, http.StatusCreated, bookingView{ID: booking.ID, Course: booking.CourseID, Status: booking.Status})
}

func (b *Backend) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authorize(w, r, false); !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := mux.Vars(r)["id"]
	for i := range b.bookings {
		if b.bookings[i].ID == id {
			b.bookings[i].Status = req.Status
			writeJSON(w, http.StatusOK, bookingView{ID: id, Course: b.bookings[i].CourseID, Status: req.Status})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Booking not found")
}

func (b *Backend) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authorize(w, r, true); !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := mux.Vars(r)["id"]
	for i := range b.bookings {
		if b.bookings[i].ID == id {
			b.bookings = append(b.bookings[:i], b.bookings[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Booking not found")
}

func (b *Backend) authorize(w http.ResponseWriter, r *http.Request, admin bool) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	b.mu.Lock()
	email, ok := b.tokens[token]
	user := b.users[email]
	b.mu.Unlock()

	if token == "" || !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	if admin && !user.IsAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return "", false
	}
	return email, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s?%s", r.Method, r.Path, r.Query)
}
