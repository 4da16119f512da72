package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

const (
	MaxRecommendations = 2
	locationTimeout    = 10 * time.Second
)

type RecommendationSnapshot struct {
	State             domain.LocationState
	Region            string
	Courses           []domain.Course
	ManuallyRequested bool
}

// RecommendationEngine picks up to two courses near the user. Only one
// detection runs at a time; overlapping requests are ignored.
type RecommendationEngine struct {
	location ports.LocationService
	courses  ports.CourseAPI
	regions  []string
	shuffle  func(n int, swap func(i, j int))
	logger   hclog.Logger

	mu      sync.Mutex
	state   domain.LocationState
	region  string
	picks   []domain.Course
	manual  bool
	running bool
}

func NewRecommendationEngine(location ports.LocationService, courses ports.CourseAPI, regions []string, logger hclog.Logger) *RecommendationEngine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if len(regions) == 0 {
		regions = domain.DefaultRegions
	}

	return &RecommendationEngine{
		location: location,
		courses:  courses,
		regions:  append([]string(nil), regions...),
		shuffle:  rand.Shuffle,
		logger:   logger.Named("recommendations"),
		state:    domain.LocationIdle,
	}
}

func (e *RecommendationEngine) Snapshot() RecommendationSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return RecommendationSnapshot{
		State:             e.state,
		Region:            e.region,
		Courses:           append([]domain.Course(nil), e.picks...),
		ManuallyRequested: e.manual,
	}
}

// Request asks for location access and recomputes the recommendations.
// manual marks that the user asked explicitly, which turns a denial into a
// random pick instead of an empty one.
func (e *RecommendationEngine) Request(ctx context.Context, manual bool) {
	if !e.begin(manual) {
		e.logger.Debug("detection already running, request ignored")
		return
	}
	defer e.end()

	status, err := e.location.RequestPermission(ctx)
	if err != nil {
		e.fail(ctx, fmt.Errorf("request location permission: %w", err))
		return
	}
	if status != domain.PermissionGranted {
		e.denied(ctx)
		return
	}

	e.detect(ctx)
}

// Resume re-runs detection when the app returns to the foreground, but only
// if access was already granted.
func (e *RecommendationEngine) Resume(ctx context.Context) {
	status, err := e.location.PermissionStatus(ctx)
	if err != nil || status != domain.PermissionGranted {
		return
	}
	if !e.begin(false) {
		return
	}
	defer e.end()
	e.detect(ctx)
}

func (e *RecommendationEngine) begin(manual bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if manual {
		e.manual = true
	}
	if e.running {
		return false
	}
	e.running = true
	e.state = domain.LocationLoading
	return true
}

func (e *RecommendationEngine) end() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func (e *RecommendationEngine) detect(ctx context.Context) {
	e.mu.Lock()
	e.state = domain.LocationGranted
	e.mu.Unlock()

	lookupCtx, cancel := context.WithTimeout(ctx, locationTimeout)
	defer cancel()

	position, err := e.location.CurrentPosition(lookupCtx)
	if err != nil {
		e.fail(ctx, fmt.Errorf("current position: %w", err))
		return
	}
	addresses, err := e.location.ReverseGeocode(lookupCtx, position)
	if err != nil {
		e.fail(ctx, fmt.Errorf("reverse geocode: %w", err))
		return
	}

	detected := ""
	if len(addresses) > 0 {
		detected = addresses[0].RegionName()
	}
	region := detected
	if matched, ok := domain.MatchRegion(detected, e.regions); ok {
		region = matched
	}

	all, err := e.courses.ListCourses(ctx, "", ports.CourseFilter{})
	if err != nil {
		e.fail(ctx, fmt.Errorf("list courses: %w", err))
		return
	}

	picks := SelectRecommendations(all, region, e.regions, MaxRecommendations)
	e.logger.Debug("recommendations ready", "detected", detected, "region", region, "count", len(picks))

	e.mu.Lock()
	e.region = region
	e.picks = picks
	e.mu.Unlock()
}

func (e *RecommendationEngine) denied(ctx context.Context) {
	e.mu.Lock()
	e.state = domain.LocationDenied
	e.region = ""
	manual := e.manual
	e.picks = nil
	e.mu.Unlock()

	if manual {
		e.pickRandom(ctx)
	}
}

func (e *RecommendationEngine) fail(ctx context.Context, err error) {
	e.logger.Warn("location lookup failed, falling back to random picks", "error", err)

	e.mu.Lock()
	e.state = domain.LocationError
	e.region = ""
	e.picks = nil
	e.mu.Unlock()

	e.pickRandom(ctx)
}

func (e *RecommendationEngine) pickRandom(ctx context.Context) {
	all, err := e.courses.ListCourses(ctx, "", ports.CourseFilter{})
	if err != nil {
		e.logger.Warn("could not fetch courses for random picks", "error", err)
		return
	}

	picks := RandomRecommendations(all, MaxRecommendations, e.shuffle)

	e.mu.Lock()
	e.picks = picks
	e.mu.Unlock()
}

// SelectRecommendations fills up to limit slots from three tiers: courses in
// region, courses in any allow-listed region, then everything else. Each
// course appears at most once.
func SelectRecommendations(courses []domain.Course, region string, allowList []string, limit int) []domain.Course {
	picked := make([]domain.Course, 0, limit)
	seen := make(map[domain.CourseID]struct{}, limit)

	take := func(match func(domain.Course) bool) {
		for _, course := range courses {
			if len(picked) >= limit {
				return
			}
			if _, dup := seen[course.ID]; dup {
				continue
			}
			if match(course) {
				seen[course.ID] = struct{}{}
				picked = append(picked, course)
			}
		}
	}

	take(func(c domain.Course) bool { return domain.RegionMatches(c.Location.Suburb, region) })
	if len(picked) < limit {
		take(func(c domain.Course) bool { return domain.ContainsAnyRegion(c.Location.Suburb, allowList) })
	}
	if len(picked) < limit {
		take(func(domain.Course) bool { return true })
	}

	return picked
}

// RandomRecommendations returns up to limit courses in shuffled order.
func RandomRecommendations(courses []domain.Course, limit int, shuffle func(n int, swap func(i, j int))) []domain.Course {
	shuffled := append([]domain.Course(nil), courses...)
	if shuffle != nil {
		shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	}
	if len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	return shuffled
}
