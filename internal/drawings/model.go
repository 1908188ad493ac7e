package drawings

import "time"

// Drawing is a plan sheet attached to one project or residential project.
// The file lives in object storage under FileKey, or externally at FileURL.
type Drawing struct {
	ID                   string    `json:"id"`
	ProjectID            *string   `json:"project_id"`
	ResidentialProjectID *string   `json:"residential_project_id"`
	Title                string    `json:"title"`
	Revision             string    `json:"revision"`
	FileKey              string    `json:"file_key"`
	FileURL              string    `json:"file_url"`
	ContentType          string    `json:"content_type"`
	SizeBytes            int64     `json:"size_bytes"`
	UploadedBy           *string   `json:"uploaded_by"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	UploadURL   string     `json:"upload_url,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	URLExpires  *time.Time `json:"url_expires_at,omitempty"`
}

type NewDrawing struct {
	Title       string
	Revision    string
	FileKey     string
	FileURL     string
	ContentType string
	SizeBytes   int64
	UploadedBy  string
}

type Patch struct {
	Title    *string
	Revision *string
	FileURL  *string
}
