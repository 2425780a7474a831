package port

import "codeport/internal/domain"

// ResponseStore persists model replies keyed by request fingerprint.
type ResponseStore interface {
	GetResponse(key string) (domain.CachedResponse, bool, error)

	PutResponse(key string, resp domain.CachedResponse) error

	Stats() (domain.CacheStats, error)

	Clear() error

	Close() error
}
