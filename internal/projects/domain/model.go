package domain

import "time"

// Status is the lifecycle stage of a portfolio project.
type Status string

const (
	StatusPlanning   Status = "Planning"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

const (
	MinProgress = 0
	MaxProgress = 100
)

// Project is the API-facing shape of a portfolio entry owned by a single user.
// JSON names follow the dashboard's camelCase model; timestamps and owner keep
// their column names.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Category      string    `json:"category"`
	Status        Status    `json:"status"`
	Progress      int       `json:"progress"`
	Priority      Priority  `json:"priority"`
	DueDate       *string   `json:"dueDate"`
	ImageURL      []string  `json:"imageUrl"`
	CoverImageURL *string   `json:"coverImageUrl"`
	WebsiteURL    *string   `json:"websiteUrl"`
	ProjectURL    *string   `json:"projectUrl"`
	GithubURL     *string   `json:"githubUrl"`
	Technologies  []string  `json:"technologies"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        string    `json:"user_id"`
}

// ProjectInsert carries the caller-supplied fields of a new project. The owner
// is never part of it.
type ProjectInsert struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description,omitempty"`
	Category      string   `json:"category"`
	Status        Status   `json:"status"`
	Progress      int      `json:"progress"`
	Priority      Priority `json:"priority"`
	DueDate       *string  `json:"dueDate,omitempty"`
	ImageURL      []string `json:"imageUrl,omitempty"`
	CoverImageURL *string  `json:"coverImageUrl,omitempty"`
	WebsiteURL    *string  `json:"websiteUrl,omitempty"`
	ProjectURL    *string  `json:"projectUrl,omitempty"`
	GithubURL     *string  `json:"githubUrl,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
	Featured      *bool    `json:"featured,omitempty"`
}

// ProjectUpdate is a partial update. A field whose Set flag is false was not
// supplied and must not reach storage.
type ProjectUpdate struct {
	Name          Field[string]   `json:"name,omitzero"`
	Description   Field[*string]  `json:"description,omitzero"`
	Category      Field[string]   `json:"category,omitzero"`
	Status        Field[Status]   `json:"status,omitzero"`
	Progress      Field[int]      `json:"progress,omitzero"`
	Priority      Field[Priority] `json:"priority,omitzero"`
	DueDate       Field[*string]  `json:"dueDate,omitzero"`
	ImageURL      Field[[]string] `json:"imageUrl,omitzero"`
	CoverImageURL Field[*string]  `json:"coverImageUrl,omitzero"`
	WebsiteURL    Field[*string]  `json:"websiteUrl,omitzero"`
	ProjectURL    Field[*string]  `json:"projectUrl,omitzero"`
	GithubURL     Field[*string]  `json:"githubUrl,omitzero"`
	Technologies  Field[[]string] `json:"technologies,omitzero"`
	Featured      Field[bool]     `json:"featured,omitzero"`
}

// Empty reports whether no field was supplied.
func (u ProjectUpdate) Empty() bool {
	return !(u.Name.Set || u.Description.Set || u.Category.Set || u.Status.Set ||
		u.Progress.Set || u.Priority.Set || u.DueDate.Set || u.ImageURL.Set ||
		u.CoverImageURL.Set || u.WebsiteURL.Set || u.ProjectURL.Set || u.GithubURL.Set ||
		u.Technologies.Set || u.Featured.Set)
}
