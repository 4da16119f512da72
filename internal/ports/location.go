package ports

import (
	"context"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

type LocationService interface {
	PermissionStatus(ctx context.Context) (domain.PermissionStatus, error)
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
	ReverseGeocode(ctx context.Context, at domain.Coordinate) ([]domain.Address, error)
}
