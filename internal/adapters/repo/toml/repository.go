package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	NotificationsPathKey = "notifications.path"

	outboxFileMode   = 0o600
	outboxDirMode    = 0o700
	outboxConfigDir  = ".parkyoga"
	outboxConfigFile = "notifications.toml"
	tempFilePattern  = ".notifications-*.toml.tmp"

	// maxRetained bounds the outbox; the oldest entries are dropped first.
	maxRetained = 200
)

// Repository is the on-disk outbox of scheduled local notifications.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.NotificationRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	if !cfg.IsSet(NotificationsPathKey) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetDefault(NotificationsPathKey, filepath.Join(homeDir, outboxConfigDir, outboxConfigFile))
	}

	path := cfg.GetString(NotificationsPathKey)
	if path == "" {
		return nil, errors.New("notifications path is empty")
	}
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Save(ctx context.Context, notification domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if notification.ID == "" {
		return errors.New("notification id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(notification)
	updated := false
	for i := range file.Notifications {
		if file.Notifications[i].ID == encoded.ID {
			file.Notifications[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Notifications = append(file.Notifications, encoded)
	}
	if overflow := len(file.Notifications) - maxRetained; overflow > 0 {
		file.Notifications = file.Notifications[overflow:]
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) List(ctx context.Context) ([]domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(file.Notifications))
	for _, entry := range file.Notifications {
		notifications = append(notifications, fromSchema(entry))
	}

	return notifications, nil
}

func (r *Repository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	if len(file.Notifications) == 0 {
		return nil
	}
	file.Notifications = nil

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read notifications file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode notifications file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve notifications path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, outboxDirMode); err != nil {
		return fmt.Errorf("create notifications directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode notifications file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp notifications file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp notifications file: %w", err)
	}
	if err := tempFile.Chmod(outboxFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp notifications file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp notifications file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace notifications file: %w", err)
	}
	cleanup = false

	return nil
}

func toSchema(notification domain.Notification) notificationSchema {
	return notificationSchema{
		ID:        string(notification.ID),
		Title:     notification.Title,
		Body:      notification.Body,
		CourseID:  string(notification.CourseID),
		FireAt:    formatTime(notification.FireAt),
		CreatedAt: formatTime(notification.CreatedAt),
	}
}

func fromSchema(entry notificationSchema) domain.Notification {
	return domain.Notification{
		ID:        domain.NotificationID(entry.ID),
		Title:     entry.Title,
		Body:      entry.Body,
		CourseID:  domain.CourseID(entry.CourseID),
		FireAt:    parseTime(entry.FireAt),
		CreatedAt: parseTime(entry.CreatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
