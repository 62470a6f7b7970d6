package studycontent

// allowedMimeTypes is the closed set of MIME types accepted for file
// uploads: documents, presentations, images and videos only.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-powerpoint":                                           true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":      true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"video/mp4":       true,
	"video/avi":       true,
	"video/quicktime": true,
}

// MimeTypeAllowed reports whether the declared MIME type may be
// uploaded.
func MimeTypeAllowed(mimeType string) bool {
	return allowedMimeTypes[mimeType]
}
