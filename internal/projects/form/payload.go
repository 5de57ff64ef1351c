package form

import (
	"fmt"
	"slices"
	"strings"

	"github.com/folio-dash/folio-backend/internal/projects/domain"
)

// Payload is the JSON "payload" part of a form submission. A field left out
// keeps the draft's value; an explicit null clears it.
type Payload struct {
	Name          domain.Field[string]          `json:"name"`
	Description   domain.Field[string]          `json:"description"`
	Category      domain.Field[string]          `json:"category"`
	Status        domain.Field[domain.Status]   `json:"status"`
	Progress      domain.Field[int]             `json:"progress"`
	Priority      domain.Field[domain.Priority] `json:"priority"`
	DueDate       domain.Field[string]          `json:"dueDate"`
	ImageURLs     domain.Field[[]string]        `json:"imageUrl"`
	CoverImageURL domain.Field[string]          `json:"coverImageUrl"`
	WebsiteURL    domain.Field[string]          `json:"websiteUrl"`
	ProjectURL    domain.Field[string]          `json:"projectUrl"`
	GithubURL     domain.Field[string]          `json:"githubUrl"`
	Technologies  domain.Field[[]string]        `json:"technologies"`
	Featured      domain.Field[bool]            `json:"featured"`

	// Indexes into the image and technology lists, applied after any
	// replacement above.
	RemoveImages       []int `json:"removeImages"`
	RemoveTechnologies []int `json:"removeTechnologies"`

	// SkipImages names attached files the user dropped from the preview.
	SkipImages []string `json:"skipImages"`
}

// Apply copies the supplied fields onto d through the field-array and cover
// operations. The cover is checked against the resulting image list, so it
// can only name an image that already has a URL.
func (d *Draft) Apply(p Payload) error {
	setText(&d.Name, p.Name)
	setText(&d.Description, p.Description)
	setText(&d.Category, p.Category)
	setText(&d.DueDate, p.DueDate)
	setText(&d.WebsiteURL, p.WebsiteURL)
	setText(&d.ProjectURL, p.ProjectURL)
	setText(&d.GithubURL, p.GithubURL)
	if p.Status.Set {
		d.Status = p.Status.Value
	}
	if p.Priority.Set {
		d.Priority = p.Priority.Value
	}
	if p.Progress.Set {
		d.Progress = p.Progress.Value
	}
	if p.Featured.Set {
		d.Featured = p.Featured.Value
	}

	if p.Technologies.Set {
		d.Technologies = []string{}
		for _, tag := range p.Technologies.Value {
			d.AddTechnology(tag)
		}
	}
	if p.ImageURLs.Set {
		cover := d.CoverImageURL
		d.ImageURLs = []string{}
		for _, url := range p.ImageURLs.Value {
			d.AddImageURL(url)
		}
		if !slices.Contains(d.ImageURLs, cover) {
			d.ClearCover()
		}
	}

	for _, i := range descending(p.RemoveTechnologies) {
		if !d.RemoveTechnology(i) {
			return fmt.Errorf("%w: no technology at index %d", domain.ErrInvalidInput, i)
		}
	}
	for _, i := range descending(p.RemoveImages) {
		if !d.RemoveImageURL(i) {
			return fmt.Errorf("%w: no image at index %d", domain.ErrInvalidInput, i)
		}
	}

	if p.CoverImageURL.Set {
		cover := strings.TrimSpace(p.CoverImageURL.Value)
		if cover == "" {
			d.ClearCover()
		} else if err := d.SetCover(cover); err != nil {
			return err
		}
	}
	return nil
}

// Skip unstages every staged file whose name is listed and returns how many
// were dropped.
func (d *Draft) Skip(names []string) int {
	n := 0
	for _, s := range d.Staged() {
		if slices.Contains(names, s.File.Name) && d.Unstage(s.ID) {
			n++
		}
	}
	return n
}

func setText(dst *string, f domain.Field[string]) {
	if f.Set {
		*dst = f.Value
	}
}

// descending returns the distinct indexes from high to low so earlier
// removals do not shift later ones.
func descending(idx []int) []int {
	out := slices.Clone(idx)
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}
