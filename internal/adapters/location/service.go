package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

const (
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"

	maxGeocodeResponseBytes = 1 << 20
)

var ErrNoPosition = errors.New("no position configured")

// Config describes the device position source. Permission starts as given;
// an undetermined permission is resolved by RequestPermission, through Ask
// when set and GrantOnRequest otherwise.
type Config struct {
	Permission     domain.PermissionStatus
	GrantOnRequest bool
	Ask            func(ctx context.Context) (bool, error)
	Position       *domain.Coordinate
	GeocoderURL    string
	UserAgent      string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Service answers location queries from configuration and resolves
// addresses through a Nominatim-compatible reverse geocoder.
type Service struct {
	cfg Config

	mu         sync.Mutex
	permission domain.PermissionStatus
}

var _ ports.LocationService = (*Service)(nil)

func NewService(cfg Config) *Service {
	permission := cfg.Permission
	if permission == "" {
		permission = domain.PermissionUndetermined
	}
	return &Service{cfg: cfg, permission: permission}
}

func (s *Service) PermissionStatus(ctx context.Context) (domain.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

func (s *Service) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	current := s.permission
	s.mu.Unlock()
	if current != domain.PermissionUndetermined {
		return current, nil
	}

	granted := s.cfg.GrantOnRequest
	if s.cfg.Ask != nil {
		answer, err := s.cfg.Ask(ctx)
		if err != nil {
			return "", fmt.Errorf("ask for location permission: %w", err)
		}
		granted = answer
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permission == domain.PermissionUndetermined {
		s.permission = domain.PermissionDenied
		if granted {
			s.permission = domain.PermissionGranted
		}
	}
	return s.permission, nil
}

func (s *Service) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if s.cfg.Position == nil {
		return domain.Coordinate{}, ErrNoPosition
	}
	return *s.cfg.Position, nil
}

type nominatimResponse struct {
	Address struct {
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		CityDistrict  string `json:"city_district"`
		County        string `json:"county"`
		StateDistrict string `json:"state_district"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
	} `json:"address"`
	Error string `json:"error"`
}

func (s *Service) ReverseGeocode(ctx context.Context, at domain.Coordinate) ([]domain.Address, error) {
	base := s.cfg.GeocoderURL
	if base == "" {
		base = DefaultGeocoderURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse geocoder url: %w", err)
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(at.Latitude, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(at.Longitude, 'f', 6, 64))
	query.Set("format", "jsonv2")
	query.Set("zoom", "14")
	endpoint := parsed.JoinPath("reverse")
	endpoint.RawQuery = query.Encode()

	requestCtx, cancel := s.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create reverse geocode request: %w", err)
	}
	userAgent := s.cfg.UserAgent
	if userAgent == "" {
		userAgent = "parkyoga"
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}

	var payload nominatimResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGeocodeResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("reverse geocode: %s", payload.Error)
	}

	address := domain.Address{
		District:  firstNonEmpty(payload.Address.Suburb, payload.Address.Neighbourhood, payload.Address.CityDistrict),
		Subregion: firstNonEmpty(payload.Address.County, payload.Address.StateDistrict),
		City:      firstNonEmpty(payload.Address.City, payload.Address.Town, payload.Address.Village),
	}
	if address == (domain.Address{}) {
		return nil, nil
	}
	return []domain.Address{address}, nil
}

func (s *Service) httpClient() *http.Client {
	if s.cfg.HTTPClient != nil {
		return s.cfg.HTTPClient
	}
	return http.DefaultClient
}

func (s *Service) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
