// Package config loads ~/.parkyoga/config.toml with PARKYOGA_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/logging"
	"github.com/spf13/viper"
)

const (
	KeyAPIBaseURL        = "api.base_url"
	KeyAPITimeout        = "api.timeout"
	KeyLogLevel          = "log.level"
	KeyLogJSON           = "log.json"
	KeyStoreDir          = "store.dir"
	KeyPassDir           = "store.pass_dir"
	KeyLocationEnabled   = "location.enabled"
	KeyLocationLatitude  = "location.latitude"
	KeyLocationLongitude = "location.longitude"
	KeyGeocoderURL       = "location.geocoder_url"
	KeyRegions           = "regions"
	KeyLinkScheme        = "links.scheme"

	EnvPrefix     = "PARKYOGA"
	EnvConfigFile = "PARKYOGA_CONFIG"

	configDir  = ".parkyoga"
	configName = "config"
	configType = "toml"
)

type Location struct {
	// Enabled is nil until the user has answered the permission question.
	Enabled     *bool
	Position    *domain.Coordinate
	GeocoderURL string
}

type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	LogLevel   string
	LogJSON    bool
	StoreDir   string
	PassDir    string
	Location   Location
	Regions    []string
	LinkScheme string
}

// Load reads the config file (if any) into v and resolves every setting.
// A missing file is not an error.
func Load(v *viper.Viper, homeDir string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	baseDir := filepath.Join(homeDir, configDir)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(baseDir)
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		v.SetConfigFile(explicit)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{KeyLocationEnabled, KeyLocationLatitude, KeyLocationLongitude} {
		_ = v.BindEnv(key)
	}

	v.SetDefault(KeyAPITimeout, 30*time.Second)
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)
	v.SetDefault(KeyStoreDir, filepath.Join(baseDir, "secrets"))
	v.SetDefault(KeyGeocoderURL, "https://nominatim.openstreetmap.org")
	v.SetDefault(KeyRegions, domain.DefaultRegions)
	v.SetDefault(KeyLinkScheme, domain.DefaultLinkScheme)
	v.SetDefault("notifications.path", filepath.Join(baseDir, "notifications.toml"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		APIBaseURL: strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
		APITimeout: v.GetDuration(KeyAPITimeout),
		LogLevel:   v.GetString(KeyLogLevel),
		LogJSON:    v.GetBool(KeyLogJSON),
		StoreDir:   v.GetString(KeyStoreDir),
		PassDir:    v.GetString(KeyPassDir),
		Regions:    regionList(v),
		LinkScheme: v.GetString(KeyLinkScheme),
		Location: Location{
			GeocoderURL: v.GetString(KeyGeocoderURL),
		},
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", KeyLogLevel, err)
	}
	if cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("config %s: must be positive", KeyAPITimeout)
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = append([]string(nil), domain.DefaultRegions...)
	}

	if v.IsSet(KeyLocationEnabled) {
		enabled := v.GetBool(KeyLocationEnabled)
		cfg.Location.Enabled = &enabled
	}
	if v.IsSet(KeyLocationLatitude) && v.IsSet(KeyLocationLongitude) {
		cfg.Location.Position = &domain.Coordinate{
			Latitude:  v.GetFloat64(KeyLocationLatitude),
			Longitude: v.GetFloat64(KeyLocationLongitude),
		}
	}

	return cfg, nil
}

// regionList reads regions as a TOML array or, from the environment, as a
// comma-separated string. Region names may contain spaces.
func regionList(v *viper.Viper) []string {
	raw, ok := v.Get(KeyRegions).(string)
	if !ok {
		return v.GetStringSlice(KeyRegions)
	}

	var regions []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			regions = append(regions, name)
		}
	}
	return regions
}

// PermissionStatus maps the configured answer onto the device permission
// model.
func (l Location) PermissionStatus() domain.PermissionStatus {
	switch {
	case l.Enabled == nil:
		return domain.PermissionUndetermined
	case *l.Enabled:
		return domain.PermissionGranted
	default:
		return domain.PermissionDenied
	}
}
