package objectkey

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// Generator defines the interface for object key generation strategies.
type Generator interface {
	// GenerateKey creates a storage key for one upload attempt. Keys
	// must be collision-resistant across concurrent uploads and must
	// never let user-supplied filename characters escape the key path.
	GenerateKey(c studycontent.Classification, fileName string) string
}

// ClassifiedGenerator derives keys from the academic classification,
// a millisecond timestamp and the sanitized original filename:
//
//	uploads/{branch}/{semester}/{subject}/{kind}/{timestamp}_{filename}
type ClassifiedGenerator struct {
	// Prefix is the top-level key prefix (default: "uploads").
	Prefix string

	// Now is the clock used for the timestamp qualifier. Overridable
	// in tests.
	Now func() time.Time
}

// NewClassifiedGenerator returns the default key generator.
func NewClassifiedGenerator() *ClassifiedGenerator {
	return &ClassifiedGenerator{
		Prefix: "uploads",
		Now:    time.Now,
	}
}

func (g *ClassifiedGenerator) GenerateKey(c studycontent.Classification, fileName string) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s/%d_%s",
		g.Prefix,
		sanitizePathComponent(c.Branch),
		sanitizePathComponent(c.Semester),
		sanitizePathComponent(c.Subject),
		sanitizePathComponent(string(c.Kind)),
		now().UnixMilli(),
		SanitizeFileName(fileName),
	)
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]+`)

// SanitizeFileName replaces every character outside [a-zA-Z0-9.-] with
// an underscore and strips any leading dots, so a hostile filename can
// never introduce path separators or traversal segments into a key.
func SanitizeFileName(fileName string) string {
	s := unsafeFileChars.ReplaceAllString(fileName, "_")
	s = strings.TrimLeft(s, ".")
	if s == "" {
		return "file"
	}
	return s
}

var unsafePathChars = regexp.MustCompile(`[^a-z0-9_-]+`)

func sanitizePathComponent(component string) string {
	s := strings.ToLower(strings.TrimSpace(component))
	s = unsafePathChars.ReplaceAllString(s, "_")
	if s == "" {
		return "_"
	}
	return s
}
