package urlstrategy

import "context"

// Strategy defines how the canonical public retrieval URL for a stored
// object is derived from its key. The publish coordinator always
// re-derives URLs through a Strategy and never trusts a client-supplied
// URL.
type Strategy interface {
	PublicURL(ctx context.Context, objectKey string) (string, error)
}
