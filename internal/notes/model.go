package notes

import "time"

// Note is a comment on exactly one project or residential project.
type Note struct {
	ID                   string    `json:"id"`
	ProjectID            *string   `json:"project_id"`
	ResidentialProjectID *string   `json:"residential_project_id"`
	AuthorID             *string   `json:"author_id"`
	AuthorName           string    `json:"author_name"`
	Body                 string    `json:"body"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
