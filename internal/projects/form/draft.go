// Package form holds the server-side state of the project create/edit form:
// field-array editing, image staging and sequential upload.
package form

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/folio-dash/folio-backend/internal/projects/domain"
)

// Uploader stores one object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
}

// Draft is a full project payload being edited. Its JSON shape matches the
// camelCase project model; submitted changes arrive as a Payload.
type Draft struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Status        domain.Status   `json:"status"`
	Progress      int             `json:"progress"`
	Priority      domain.Priority `json:"priority"`
	DueDate       string          `json:"dueDate"`
	ImageURLs     []string        `json:"imageUrl"`
	CoverImageURL string          `json:"coverImageUrl"`
	WebsiteURL    string          `json:"websiteUrl"`
	ProjectURL    string          `json:"projectUrl"`
	GithubURL     string          `json:"githubUrl"`
	Technologies  []string        `json:"technologies"`
	Featured      bool            `json:"featured"`

	// Limit caps staged file size; zero means MaxImageSize.
	Limit int64 `json:"-"`

	staged []StagedFile
}

// StagedFile is an accepted file waiting for Submit. ID is the handle the
// client uses for its preview.
type StagedFile struct {
	ID   string `json:"id"`
	File File   `json:"-"`
}

func NewDraft() *Draft {
	return &Draft{
		Status:       domain.StatusPlanning,
		Priority:     domain.PriorityMedium,
		Progress:     0,
		ImageURLs:    []string{},
		Technologies: []string{},
	}
}

// DraftFrom loads an existing project for editing.
func DraftFrom(p domain.Project) *Draft {
	return &Draft{
		Name:          p.Name,
		Description:   deref(p.Description),
		Category:      p.Category,
		Status:        p.Status,
		Progress:      p.Progress,
		Priority:      p.Priority,
		DueDate:       deref(p.DueDate),
		ImageURLs:     append([]string{}, p.ImageURL...),
		CoverImageURL: deref(p.CoverImageURL),
		WebsiteURL:    deref(p.WebsiteURL),
		ProjectURL:    deref(p.ProjectURL),
		GithubURL:     deref(p.GithubURL),
		Technologies:  append([]string{}, p.Technologies...),
		Featured:      p.Featured,
	}
}

func (d *Draft) AddTechnology(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	d.Technologies = append(d.Technologies, tag)
	return true
}

func (d *Draft) RemoveTechnology(index int) bool {
	if index < 0 || index >= len(d.Technologies) {
		return false
	}
	d.Technologies = slices.Delete(d.Technologies, index, index+1)
	return true
}

func (d *Draft) AddImageURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	d.ImageURLs = append(d.ImageURLs, url)
	return true
}

// RemoveImageURL drops the entry at index; removing the cover clears it.
func (d *Draft) RemoveImageURL(index int) bool {
	if index < 0 || index >= len(d.ImageURLs) {
		return false
	}
	removed := d.ImageURLs[index]
	d.ImageURLs = slices.Delete(d.ImageURLs, index, index+1)
	if removed == d.CoverImageURL && !slices.Contains(d.ImageURLs, removed) {
		d.CoverImageURL = ""
	}
	return true
}

func (d *Draft) SetCover(url string) error {
	if !slices.Contains(d.ImageURLs, url) {
		return fmt.Errorf("%w: cover image must be one of the project images", domain.ErrInvalidInput)
	}
	d.CoverImageURL = url
	return nil
}

func (d *Draft) ClearCover() {
	d.CoverImageURL = ""
}

// Stage validates each file on its own. Accepted files are kept for Submit;
// the rest come back as rejections.
func (d *Draft) Stage(files ...File) []Rejection {
	var rejected []Rejection
	for _, f := range files {
		if r := Validate(&f, d.Limit); r != nil {
			rejected = append(rejected, *r)
			continue
		}
		d.staged = append(d.staged, StagedFile{ID: uuid.NewString(), File: f})
	}
	return rejected
}

func (d *Draft) Staged() []StagedFile {
	return slices.Clone(d.staged)
}

func (d *Draft) Unstage(id string) bool {
	for i, s := range d.staged {
		if s.ID == id {
			d.staged = slices.Delete(d.staged, i, i+1)
			return true
		}
	}
	return false
}

// Release drops every staged file.
func (d *Draft) Release() {
	d.staged = nil
}

// Submit uploads staged files one at a time. The first failure stops the
// batch; objects uploaded before it are returned so the caller can report
// them, but they are not added to the draft. On success the new URLs are
// appended to the image list and the staged files are released.
func (d *Draft) Submit(ctx context.Context, up Uploader) ([]string, error) {
	urls := make([]string, 0, len(d.staged))
	for _, s := range d.staged {
		url, err := upload(ctx, up, s.File)
		if err != nil {
			return urls, fmt.Errorf("failed to upload %s: %w", s.File.Name, err)
		}
		urls = append(urls, url)
	}

	d.ImageURLs = append(d.ImageURLs, urls...)
	d.Release()
	return urls, nil
}

func upload(ctx context.Context, up Uploader, f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return up.Upload(ctx, StorageName(f.Name), f.ContentType, rc, f.Size)
}

// Insert converts the draft into a create payload.
func (d *Draft) Insert() domain.ProjectInsert {
	featured := d.Featured
	return domain.ProjectInsert{
		Name:          strings.TrimSpace(d.Name),
		Description:   optional(d.Description),
		Category:      strings.TrimSpace(d.Category),
		Status:        d.Status,
		Progress:      d.Progress,
		Priority:      d.Priority,
		DueDate:       optional(d.DueDate),
		ImageURL:      slices.Clone(d.ImageURLs),
		CoverImageURL: optional(d.CoverImageURL),
		WebsiteURL:    optional(d.WebsiteURL),
		ProjectURL:    optional(d.ProjectURL),
		GithubURL:     optional(d.GithubURL),
		Technologies:  slices.Clone(d.Technologies),
		Featured:      &featured,
	}
}

// Update converts the draft into an update that supplies every field, the
// way the form always sends its whole state.
func (d *Draft) Update() domain.ProjectUpdate {
	images := d.ImageURLs
	if images == nil {
		images = []string{}
	}
	tech := d.Technologies
	if tech == nil {
		tech = []string{}
	}
	return domain.ProjectUpdate{
		Name:          domain.Some(strings.TrimSpace(d.Name)),
		Description:   domain.Some(optional(d.Description)),
		Category:      domain.Some(strings.TrimSpace(d.Category)),
		Status:        domain.Some(d.Status),
		Progress:      domain.Some(d.Progress),
		Priority:      domain.Some(d.Priority),
		DueDate:       domain.Some(optional(d.DueDate)),
		ImageURL:      domain.Some(slices.Clone(images)),
		CoverImageURL: domain.Some(optional(d.CoverImageURL)),
		WebsiteURL:    domain.Some(optional(d.WebsiteURL)),
		ProjectURL:    domain.Some(optional(d.ProjectURL)),
		GithubURL:     domain.Some(optional(d.GithubURL)),
		Technologies:  domain.Some(slices.Clone(tech)),
		Featured:      domain.Some(d.Featured),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
