package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version       int                  `toml:"version"`
	Notifications []notificationSchema `toml:"notifications"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported notifications schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type notificationSchema struct {
	ID        string `toml:"id"`
	Title     string `toml:"title"`
	Body      string `toml:"body"`
	CourseID  string `toml:"course_id,omitempty"`
	FireAt    string `toml:"fire_at"`
	CreatedAt string `toml:"created_at"`
}
