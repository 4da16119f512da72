package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/lynnxiaofeng/parkyoga/internal/adapters/api"
	"github.com/lynnxiaofeng/parkyoga/internal/adapters/location"
	"github.com/lynnxiaofeng/parkyoga/internal/adapters/render/screen"
	tomlrepo "github.com/lynnxiaofeng/parkyoga/internal/adapters/repo/toml"
	chainstore "github.com/lynnxiaofeng/parkyoga/internal/adapters/secrets/chain"
	filestore "github.com/lynnxiaofeng/parkyoga/internal/adapters/secrets/file"
	passstore "github.com/lynnxiaofeng/parkyoga/internal/adapters/secrets/pass"
	"github.com/lynnxiaofeng/parkyoga/internal/application"
	"github.com/lynnxiaofeng/parkyoga/internal/config"
	"github.com/lynnxiaofeng/parkyoga/internal/logging"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
	"github.com/lynnxiaofeng/parkyoga/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfg      config.Config
	logger   hclog.Logger
	session  *application.SessionManager
	courses  *application.CourseList
	bookings *application.BookingList
	notifier *application.BookingNotifier
	engine   *application.RecommendationEngine
	now      func() time.Time
}

// deferredWriter resolves its target on every write so output follows
// whatever the root command is pointed at when it runs.
type deferredWriter func() io.Writer

func (w deferredWriter) Write(p []byte) (int, error) {
	return w().Write(p)
}

func wireApp(root *cobra.Command) (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	cfg, err := config.Load(v, homeDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	stderr := deferredWriter(root.ErrOrStderr)
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, Output: stderr})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	var primary ports.SecretStore = passstore.NewStore()
	if cfg.PassDir != "" {
		primary = passstore.NewStoreAt(cfg.PassDir)
	}
	secrets, err := chainstore.NewStoreChecked(primary, filestore.NewStore(cfg.StoreDir))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}
	secrets.WithLogger(logger)

	notifications, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire notification repository: %w", err)
	}

	client := api.Client{
		BaseURL:        cfg.APIBaseURL,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: cfg.APITimeout,
	}

	locationService := location.NewService(location.Config{
		Permission:     cfg.Location.PermissionStatus(),
		Position:       cfg.Location.Position,
		GeocoderURL:    cfg.Location.GeocoderURL,
		UserAgent:      version.UserAgent(),
		HTTPClient:     http.DefaultClient,
		RequestTimeout: cfg.APITimeout,
		Ask: func(ctx context.Context) (bool, error) {
			return askLocationPermission(ctx, root.InOrStdin(), stderr)
		},
	})

	alerter := screen.NewAlerter(stderr)
	clock := ports.SystemClock{}
	session := application.NewSessionManager(client, secrets, logger)
	notifier := application.NewBookingNotifier(notifications, clock)

	return &app{
		cfg:      cfg,
		logger:   logger,
		session:  session,
		courses:  application.NewCourseList(session, client, alerter, clock, logger).WithLinkScheme(cfg.LinkScheme),
		bookings: application.NewBookingList(session, client, notifier, alerter, logger),
		notifier: notifier,
		engine:   application.NewRecommendationEngine(locationService, client, cfg.Regions, logger),
		now:      time.Now,
	}, nil
}
