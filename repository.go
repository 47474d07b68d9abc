package blogvault

// Well-known blob keys. The post collection and the cover image mapping are
// persisted independently under these keys.
const (
	KeyPosts       = "blog_posts"
	KeyCoverImages = "blog_cover_images"
)

// Repository persists whole serialized blobs under well-known keys. A Save is
// atomic from the caller's point of view: it either fully replaces the blob or
// fails without touching it.
type Repository interface {
	// Load returns the blob stored under key, or ErrKeyNotFound.
	Load(key string) ([]byte, error)
	// Save replaces the blob stored under key.
	Save(key string, data []byte) error
	// Close closes the repository.
	Close() error
}
