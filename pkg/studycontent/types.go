package studycontent

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// ContentKind is the domain type for the category of a published item.
type ContentKind string

// Content kind constants (typed).
const (
	KindNotes       ContentKind = "notes"
	KindPYQ         ContentKind = "pyq"
	KindFormulas    ContentKind = "formulas"
	KindTimetable   ContentKind = "timetable"
	KindAssignments ContentKind = "assignments"
	KindEvents      ContentKind = "events"
	KindEbook       ContentKind = "ebook"
	KindVideo       ContentKind = "video"
)

// IsValid reports whether k is one of the known content kinds.
func (k ContentKind) IsValid() bool {
	switch k {
	case KindNotes, KindPYQ, KindFormulas, KindTimetable,
		KindAssignments, KindEvents, KindEbook, KindVideo:
		return true
	}
	return false
}

// IsFileKind reports whether items of this kind carry a stored file.
// Video items reference an external URL and have no blob.
func (k ContentKind) IsFileKind() bool {
	return k.IsValid() && k != KindVideo
}

// Classification locates an item in the academic taxonomy. Every publish
// operation carries one.
type Classification struct {
	Branch   string      `json:"branch"`
	Semester string      `json:"semester"`
	Subject  string      `json:"subject"`
	Kind     ContentKind `json:"content_type"`
}

// ContentItem represents one published artifact.
//
// Exactly one payload variant is populated: file fields for file kinds,
// video fields when Kind == KindVideo. A file item only ever becomes
// visible to readers after its blob is confirmed stored.
type ContentItem struct {
	ID       uuid.UUID   `json:"id"`
	Branch   string      `json:"branch"`
	Semester string      `json:"semester"`
	Subject  string      `json:"subject"`
	Kind     ContentKind `json:"content_type"`

	// File payload
	FileName  string `json:"file_name,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`

	// Video payload
	VideoTitle string `json:"video_title,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
	VideoID    string `json:"video_id,omitempty"`

	UploadedBy string    `json:"uploaded_by"`
	UploadDate time.Time `json:"upload_date"`
}

// UploadableFile is the normalized boundary value for an incoming file.
// The adaptation from the transport library (multipart form, etc.)
// happens once in the API layer; the core only ever sees this shape.
type UploadableFile struct {
	Reader   io.Reader
	FileName string
	MimeType string
	Size     int64
}

// UploadAuthorization grants one direct client-to-storage write. It is
// ephemeral and never persisted; if unused it simply expires.
type UploadAuthorization struct {
	UploadURL string    `json:"upload_url"`
	ObjectKey string    `json:"object_key"`
	MimeType  string    `json:"mime_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadRoute identifies which path the router selected for a file.
type UploadRoute string

const (
	// RouteDirect streams the bytes through the application process.
	RouteDirect UploadRoute = "direct"
	// RoutePresigned hands the client a time-boxed authorization for a
	// direct-to-storage write.
	RoutePresigned UploadRoute = "presigned"
)

// Principal is the authenticated identity produced by the auth
// boundary. The core trusts IsAdmin as given and never re-derives it.
type Principal struct {
	ID      string
	Email   string
	IsAdmin bool
}

// ListContentFilters is an optional conjunction of filters for listing.
// A nil field matches all values for that dimension. Limit and Offset
// are optional so pagination can be added without interface changes.
type ListContentFilters struct {
	Kind     *ContentKind
	Subject  *string
	Branch   *string
	Semester *string
	Limit    *int
	Offset   *int
}
