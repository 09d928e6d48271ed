package models

import "time"

// UploadKind selects the backend upload endpoint and the content type the
// staged file is forwarded with.
type UploadKind string

const (
	UploadPDF  UploadKind = "pdf"
	UploadText UploadKind = "text"
)

// ContentType is the fixed content type declared to the backend.
func (k UploadKind) ContentType() string {
	switch k {
	case UploadPDF:
		return "application/pdf"
	default:
		return "text/plain"
	}
}

// TempFile represents an uploaded file staged on disk while it is forwarded.
type TempFile struct {
	FileName   string    `json:"file_name"`
	StoredPath string    `json:"stored_path"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}
