// Package mapper translates between the projects table row shape (snake_case
// columns, nullable) and the camelCase API model.
package mapper

import (
	"fmt"
	"time"

	"github.com/folio-dash/folio-backend/internal/projects/domain"
)

// Record is one row of the projects table.
type Record struct {
	ID            string
	Name          string
	Description   *string
	Category      string
	Status        string
	Progress      int
	Priority      string
	DueDate       *string
	ImageURL      []string
	CoverImageURL *string
	WebsiteURL    *string
	ProjectURL    *string
	GithubURL     *string
	Technologies  []string
	Featured      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        string
}

// FieldColumn pairs an API field name with its column.
type FieldColumn struct {
	Field  string
	Column string
}

// Fields is the mapping table, in column order.
var Fields = []FieldColumn{
	{"id", "id"},
	{"name", "name"},
	{"description", "description"},
	{"category", "category"},
	{"status", "status"},
	{"progress", "progress"},
	{"priority", "priority"},
	{"dueDate", "due_date"},
	{"imageUrl", "image_url"},
	{"coverImageUrl", "cover_image_url"},
	{"websiteUrl", "website_url"},
	{"projectUrl", "project_url"},
	{"githubUrl", "github_url"},
	{"technologies", "technologies"},
	{"featured", "featured"},
	{"created_at", "created_at"},
	{"updated_at", "updated_at"},
	{"user_id", "user_id"},
}

var (
	columnByField = make(map[string]string, len(Fields))
	fieldByColumn = make(map[string]string, len(Fields))
)

func init() {
	for _, fc := range Fields {
		columnByField[fc.Field] = fc.Column
		fieldByColumn[fc.Column] = fc.Field
	}
}

func ColumnFor(field string) (string, bool) {
	c, ok := columnByField[field]
	return c, ok
}

func FieldFor(column string) (string, bool) {
	f, ok := fieldByColumn[column]
	return f, ok
}

func column(field string) string {
	c, ok := columnByField[field]
	if !ok {
		panic(fmt.Sprintf("mapper: no column for field %q", field))
	}
	return c
}

// Column is a column name and the value to write to it. A nil Value writes NULL.
type Column struct {
	Name  string
	Value any
}

func ToProject(r Record) domain.Project {
	images := r.ImageURL
	if images == nil {
		images = []string{}
	}
	return domain.Project{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Status:        domain.Status(r.Status),
		Progress:      r.Progress,
		Priority:      domain.Priority(r.Priority),
		DueDate:       r.DueDate,
		ImageURL:      images,
		CoverImageURL: r.CoverImageURL,
		WebsiteURL:    r.WebsiteURL,
		ProjectURL:    r.ProjectURL,
		GithubURL:     r.GithubURL,
		Technologies:  r.Technologies,
		Featured:      r.Featured,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		UserID:        r.UserID,
	}
}

func ToRecord(p domain.Project) Record {
	return Record{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Status:        string(p.Status),
		Progress:      p.Progress,
		Priority:      string(p.Priority),
		DueDate:       p.DueDate,
		ImageURL:      p.ImageURL,
		CoverImageURL: p.CoverImageURL,
		WebsiteURL:    p.WebsiteURL,
		ProjectURL:    p.ProjectURL,
		GithubURL:     p.GithubURL,
		Technologies:  p.Technologies,
		Featured:      p.Featured,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		UserID:        p.UserID,
	}
}

// InsertColumns returns every writable column for a new row. Absent or empty
// optional text becomes NULL and absent lists become empty lists.
func InsertColumns(in domain.ProjectInsert, ownerID string) []Column {
	featured := false
	if in.Featured != nil {
		featured = *in.Featured
	}
	return []Column{
		{column("name"), in.Name},
		{column("description"), nullable(in.Description)},
		{column("category"), in.Category},
		{column("status"), string(in.Status)},
		{column("progress"), in.Progress},
		{column("priority"), string(in.Priority)},
		{column("dueDate"), nullable(in.DueDate)},
		{column("imageUrl"), list(in.ImageURL)},
		{column("coverImageUrl"), nullable(in.CoverImageURL)},
		{column("websiteUrl"), nullable(in.WebsiteURL)},
		{column("projectUrl"), nullable(in.ProjectURL)},
		{column("githubUrl"), nullable(in.GithubURL)},
		{column("technologies"), list(in.Technologies)},
		{column("featured"), featured},
		{column("user_id"), ownerID},
	}
}

// UpdateColumns returns only the supplied fields. An explicit null (or empty
// text) clears a nullable column; a null image list becomes an empty list.
func UpdateColumns(u domain.ProjectUpdate) []Column {
	var cols []Column
	add := func(field string, v any) {
		cols = append(cols, Column{column(field), v})
	}

	if u.Name.Set {
		add("name", u.Name.Value)
	}
	if u.Description.Set {
		add("description", nullable(u.Description.Value))
	}
	if u.Category.Set {
		add("category", u.Category.Value)
	}
	if u.Status.Set {
		add("status", string(u.Status.Value))
	}
	if u.Progress.Set {
		add("progress", u.Progress.Value)
	}
	if u.Priority.Set {
		add("priority", string(u.Priority.Value))
	}
	if u.DueDate.Set {
		add("dueDate", nullable(u.DueDate.Value))
	}
	if u.ImageURL.Set {
		add("imageUrl", list(u.ImageURL.Value))
	}
	if u.CoverImageURL.Set {
		add("coverImageUrl", nullable(u.CoverImageURL.Value))
	}
	if u.WebsiteURL.Set {
		add("websiteUrl", nullable(u.WebsiteURL.Value))
	}
	if u.ProjectURL.Set {
		add("projectUrl", nullable(u.ProjectURL.Value))
	}
	if u.GithubURL.Set {
		add("githubUrl", nullable(u.GithubURL.Value))
	}
	if u.Technologies.Set {
		if u.Technologies.Value == nil {
			add("technologies", nil)
		} else {
			add("technologies", u.Technologies.Value)
		}
	}
	if u.Featured.Set {
		add("featured", u.Featured.Value)
	}
	return cols
}

func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func list(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
