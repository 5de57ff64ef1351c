package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/folio-dash/folio-backend/internal/logging"
	"github.com/folio-dash/folio-backend/internal/projects/domain"
	"github.com/folio-dash/folio-backend/internal/projects/mapper"
)

// Repository is the owner-scoped row store. *repository.ProjectRepository implements it.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]mapper.Record, error)
	Get(ctx context.Context, ownerID, id string) (*mapper.Record, error)
	Insert(ctx context.Context, id string, cols []mapper.Column) (*mapper.Record, error)
	Update(ctx context.Context, ownerID, id string, cols []mapper.Column) (*mapper.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ListCache caches each owner's list. *cache.ListCache implements it. Set
// must refuse a list whose generation was overtaken by an Invalidate.
type ListCache interface {
	Get(ctx context.Context, ownerID string) ([]domain.Project, bool, error)
	Generation(ctx context.Context, ownerID string) (int64, error)
	Set(ctx context.Context, ownerID string, gen int64, projects []domain.Project) (bool, error)
	Invalidate(ctx context.Context, ownerID string, ev domain.ChangeEvent) error
}

// ProjectService handles project business logic. Every method takes the
// acting principal as ownerID and refuses to run without one.
type ProjectService struct {
	repo  Repository
	cache ListCache
	now   func() time.Time
}

// NewProjectService creates a new project service. cache may be nil.
func NewProjectService(repo Repository, cache ListCache) *ProjectService {
	return &ProjectService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// List returns the owner's projects, newest first.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	log := logging.Operation(ctx, "projects.list")

	cacheable := false
	var gen int64
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, ownerID)
		if err != nil {
			log.Warn("project cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
		// read before the query so a write landing mid-load makes Set a no-op
		if gen, err = s.cache.Generation(ctx, ownerID); err != nil {
			log.Warn("project cache generation read failed", "error", err)
		} else {
			cacheable = true
		}
	}

	recs, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(recs))
	for _, r := range recs {
		projects = append(projects, mapper.ToProject(r))
	}

	if cacheable {
		stored, err := s.cache.Set(ctx, ownerID, gen, projects)
		if err != nil {
			log.Warn("project cache write failed", "error", err)
		} else if !stored {
			log.Debug("project list changed while loading; not cached")
		}
	}
	return projects, nil
}

// Summary derives the stat-card counts from the owner's list.
func (s *ProjectService) Summary(ctx context.Context, ownerID string) (domain.Summary, error) {
	projects, err := s.List(ctx, ownerID)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(projects), nil
}

// Get returns the project, or nil when the owner has no project with that id.
func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !validID(id) {
		return nil, nil
	}

	rec, err := s.repo.Get(ctx, ownerID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	p := mapper.ToProject(*rec)
	return &p, nil
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in domain.ProjectInsert) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Status == "" {
		in.Status = domain.StatusPlanning
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if err := validateInsert(in); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	rec, err := s.repo.Insert(ctx, id, mapper.InsertColumns(in, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	p := mapper.ToProject(*rec)
	s.invalidate(ctx, ownerID, domain.ChangeCreated, p.ID)
	logging.Operation(ctx, "projects.create").Info("project created", "project_id", p.ID)
	return &p, nil
}

// Update writes only the supplied fields. A missing row, a foreign row and a
// malformed id all yield domain.ErrNoRowMatched.
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, u domain.ProjectUpdate) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !validID(id) {
		return nil, domain.ErrNoRowMatched
	}

	if u.Name.Set {
		u.Name.Value = strings.TrimSpace(u.Name.Value)
	}
	if u.Category.Set {
		u.Category.Value = strings.TrimSpace(u.Category.Value)
	}
	if err := validateUpdate(u); err != nil {
		return nil, err
	}
	if err := s.reconcileCover(ctx, ownerID, id, &u); err != nil {
		return nil, err
	}

	rec, err := s.repo.Update(ctx, ownerID, id, mapper.UpdateColumns(u))
	if errors.Is(err, domain.ErrNoRowMatched) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	p := mapper.ToProject(*rec)
	s.invalidate(ctx, ownerID, domain.ChangeUpdated, p.ID)
	return &p, nil
}

func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if !validID(id) {
		return domain.ErrNoRowMatched
	}

	err := s.repo.Delete(ctx, ownerID, id)
	if errors.Is(err, domain.ErrNoRowMatched) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.invalidate(ctx, ownerID, domain.ChangeDeleted, id)
	logging.Operation(ctx, "projects.delete").Info("project deleted", "project_id", id)
	return nil
}

// reconcileCover keeps the cover inside the effective image list. A supplied
// cover outside it is rejected; a stored cover dropped by a new image list is
// cleared in the same update.
func (s *ProjectService) reconcileCover(ctx context.Context, ownerID, id string, u *domain.ProjectUpdate) error {
	coverSupplied := u.CoverImageURL.Set && present(u.CoverImageURL.Value)
	if !u.ImageURL.Set && !coverSupplied {
		return nil
	}

	var (
		images []string
		cover  *string
	)
	if u.ImageURL.Set && coverSupplied {
		images, cover = u.ImageURL.Value, u.CoverImageURL.Value
	} else {
		rec, err := s.repo.Get(ctx, ownerID, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoRowMatched
		}
		if err != nil {
			return fmt.Errorf("failed to fetch project: %w", err)
		}
		images, cover = rec.ImageURL, rec.CoverImageURL
		if u.ImageURL.Set {
			images = u.ImageURL.Value
		}
		if u.CoverImageURL.Set {
			cover = u.CoverImageURL.Value
		}
	}

	if !present(cover) || slices.Contains(images, *cover) {
		return nil
	}
	if coverSupplied {
		return invalid("cover image must be one of the project images")
	}
	u.CoverImageURL = domain.Some[*string](nil)
	return nil
}

// invalidate drops the owner's cached list. Failures are logged, the write already happened.
func (s *ProjectService) invalidate(ctx context.Context, ownerID string, typ domain.ChangeType, projectID string) {
	if s.cache == nil {
		return
	}
	ev := domain.ChangeEvent{Type: typ, ProjectID: projectID, At: s.now().UTC()}
	if err := s.cache.Invalidate(ctx, ownerID, ev); err != nil {
		logging.Operation(ctx, "projects.invalidate").Warn("project cache invalidation failed",
			"project_id", projectID, "error", err)
	}
}

func validateInsert(in domain.ProjectInsert) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Category == "" {
		return invalid("category is required")
	}
	if err := validateCommon(in.Status, in.Priority, in.Progress, in.DueDate); err != nil {
		return err
	}
	if present(in.CoverImageURL) && !slices.Contains(in.ImageURL, *in.CoverImageURL) {
		return invalid("cover image must be one of the project images")
	}
	return nil
}

func validateUpdate(u domain.ProjectUpdate) error {
	if u.Name.Set && u.Name.Value == "" {
		return invalid("name cannot be empty")
	}
	if u.Category.Set && u.Category.Value == "" {
		return invalid("category cannot be empty")
	}
	status, priority, progress := domain.StatusPlanning, domain.PriorityMedium, 0
	if u.Status.Set {
		status = u.Status.Value
	}
	if u.Priority.Set {
		priority = u.Priority.Value
	}
	if u.Progress.Set {
		progress = u.Progress.Value
	}
	var due *string
	if u.DueDate.Set {
		due = u.DueDate.Value
	}
	return validateCommon(status, priority, progress, due)
}

func validateCommon(status domain.Status, priority domain.Priority, progress int, due *string) error {
	if !status.Valid() {
		return invalid(fmt.Sprintf("unknown status %q", status))
	}
	if !priority.Valid() {
		return invalid(fmt.Sprintf("unknown priority %q", priority))
	}
	if progress < domain.MinProgress || progress > domain.MaxProgress {
		return invalid(fmt.Sprintf("progress must be between %d and %d", domain.MinProgress, domain.MaxProgress))
	}
	if present(due) {
		if _, err := time.Parse(time.DateOnly, *due); err != nil {
			return invalid("dueDate must be YYYY-MM-DD")
		}
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
