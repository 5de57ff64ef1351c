package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/folio-dash/folio-backend/internal/projects/domain"
	"github.com/folio-dash/folio-backend/internal/projects/mapper"
)

const selectColumns = `id::text, name, description, category, status, progress, priority,
       due_date::text, image_url, cover_image_url, website_url, project_url, github_url,
       technologies, featured, created_at, updated_at, user_id`

// invalid_text_representation, raised when a malformed id is compared to the uuid column.
const pqInvalidTextRepresentation = "22P02"

// ProjectRepository provides owner-scoped persistence operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns all projects owned by ownerID, newest first.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]mapper.Record, error) {
	q := `
SELECT ` + selectColumns + `
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]mapper.Record, 0, 16)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the project matching id and ownerID, or domain.ErrNotFound.
func (r *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*mapper.Record, error) {
	q := `
SELECT ` + selectColumns + `
FROM projects
WHERE id = $1 AND user_id = $2;
`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Insert writes a new row with the given id and columns and returns it.
func (r *ProjectRepository) Insert(ctx context.Context, id string, cols []mapper.Column) (*mapper.Record, error) {
	names := make([]string, 0, len(cols)+1)
	placeholders := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)

	names = append(names, "id")
	placeholders = append(placeholders, "$1")
	args = append(args, id)
	for _, c := range cols {
		args = append(args, bind(c.Value))
		names = append(names, c.Name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	q := `
INSERT INTO projects (` + strings.Join(names, ", ") + `)
VALUES (` + strings.Join(placeholders, ", ") + `)
RETURNING ` + selectColumns + `;
`
	return scanRecord(r.db.QueryRowContext(ctx, q, args...))
}

// Update applies cols to the row matching id and ownerID. updated_at is always
// refreshed. Zero matched rows yields domain.ErrNoRowMatched.
func (r *ProjectRepository) Update(ctx context.Context, ownerID, id string, cols []mapper.Column) (*mapper.Record, error) {
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		args = append(args, bind(c.Value))
		sets = append(sets, fmt.Sprintf("%s = $%d", c.Name, len(args)))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id, ownerID)
	q := fmt.Sprintf(`
UPDATE projects
SET %s
WHERE id = $%d AND user_id = $%d
RETURNING %s;
`, strings.Join(sets, ", "), len(args)-1, len(args), selectColumns)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNoRowMatched
		}
		return nil, err
	}
	return rec, nil
}

// Delete removes the row matching id and ownerID.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) error {
	const q = `
DELETE FROM projects
WHERE id = $1 AND user_id = $2;
`
	result, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNoRowMatched
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNoRowMatched
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*mapper.Record, error) {
	var (
		rec                               mapper.Record
		description, dueDate, cover       sql.NullString
		websiteURL, projectURL, githubURL sql.NullString
		images, technologies              pq.StringArray
	)
	err := s.Scan(
		&rec.ID,
		&rec.Name,
		&description,
		&rec.Category,
		&rec.Status,
		&rec.Progress,
		&rec.Priority,
		&dueDate,
		&images,
		&cover,
		&websiteURL,
		&projectURL,
		&githubURL,
		&technologies,
		&rec.Featured,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.UserID,
	)
	if err != nil {
		return nil, err
	}

	rec.Description = nullString(description)
	rec.DueDate = nullString(dueDate)
	rec.CoverImageURL = nullString(cover)
	rec.WebsiteURL = nullString(websiteURL)
	rec.ProjectURL = nullString(projectURL)
	rec.GithubURL = nullString(githubURL)
	if images != nil {
		rec.ImageURL = []string(images)
	}
	if technologies != nil {
		rec.Technologies = []string(technologies)
	}
	return &rec, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func bind(v any) any {
	if list, ok := v.([]string); ok {
		return pq.Array(list)
	}
	return v
}

func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation
}
