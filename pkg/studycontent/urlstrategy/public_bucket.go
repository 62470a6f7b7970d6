package urlstrategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PublicBucketStrategy builds URLs against a public bucket or CDN
// endpoint, e.g. "https://<account>.r2.cloudflarestorage.com/<bucket>".
type PublicBucketStrategy struct {
	baseURL string
}

// NewPublicBucketStrategy creates a strategy serving keys under the
// given base URL.
func NewPublicBucketStrategy(baseURL string) *PublicBucketStrategy {
	return &PublicBucketStrategy{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *PublicBucketStrategy) PublicURL(ctx context.Context, objectKey string) (string, error) {
	if s.baseURL == "" {
		return "", errors.New("public base URL not configured")
	}
	return fmt.Sprintf("%s/%s", s.baseURL, objectKey), nil
}
