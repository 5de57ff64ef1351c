package http

import (
	"context"
	"time"

	"github.com/folio-dash/folio-backend/internal/projects/cache"
	"github.com/folio-dash/folio-backend/internal/projects/domain"
	"github.com/folio-dash/folio-backend/internal/projects/form"
)

// Service is the project use-case surface. *service.ProjectService implements it.
type Service interface {
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Summary(ctx context.Context, ownerID string) (domain.Summary, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Project, error)
	Create(ctx context.Context, ownerID string, in domain.ProjectInsert) (*domain.Project, error)
	Update(ctx context.Context, ownerID, id string, u domain.ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc       Service
	uploader  form.Uploader
	events    *cache.ListCache
	maxUpload int64
	keepAlive time.Duration
}

// New builds the handler. uploader and events may be nil when blob storage or
// redis are not configured; the routes that need them then answer 503.
func New(svc Service, uploader form.Uploader, events *cache.ListCache, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:       svc,
		uploader:  uploader,
		events:    events,
		maxUpload: maxUploadBytes,
		keepAlive: 15 * time.Second,
	}
}
