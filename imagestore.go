package blogvault

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageAttachment is a stored cover image payload. At most one attachment
// exists per post.
type ImageAttachment struct {
	Data      string    `json:"data"`               // Data is the base64 data URI of the image
	Filename  string    `json:"filename,omitempty"` // Filename is the sanitized original filename
	MediaType string    `json:"mediaType"`          // MediaType is the detected image media type
	Timestamp time.Time `json:"timestamp"`          // Timestamp is the creation or overwrite time
}

// ImageUpload is a raw image input supplied by a caller.
type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

// ImageStore owns the post ID to cover image mapping. The whole mapping is
// persisted as a single blob under KeyCoverImages.
type ImageStore struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	images map[string]ImageAttachment
}

// NewImageStore creates an ImageStore backed by repo and loads the persisted
// mapping. A missing blob starts the store empty.
func NewImageStore(repo Repository, opts Options) (*ImageStore, error) {
	s := &ImageStore{
		repo:   repo,
		logger: opts.logger(),
		now:    opts.clock(),
		images: make(map[string]ImageAttachment),
	}

	data, err := repo.Load(KeyCoverImages)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load cover images: %w", err)
	}

	if err := json.Unmarshal(data, &s.images); err != nil {
		return nil, fmt.Errorf("failed to deserialize cover images: %w", err)
	}

	return s, nil
}

// Save reads and encodes the upload and stores it as the cover image for
// postID, overwriting any prior attachment. The mapping is left unmodified if
// the payload cannot be read or does not decode as an image, or if persisting
// the mapping fails. It returns the encoded data URI.
func (s *ImageStore) Save(ctx context.Context, postID string, upload ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(upload.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	mediaType := "image/" + format
	uri := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.images[postID]
	s.images[postID] = ImageAttachment{
		Data:      uri,
		Filename:  sanitizeFilename(upload.Filename),
		MediaType: mediaType,
		Timestamp: s.now().UTC(),
	}

	if err := s.persistLocked(); err != nil {
		if existed {
			s.images[postID] = prev
		} else {
			delete(s.images, postID)
		}
		return "", err
	}

	return uri, nil
}

// Get returns the encoded cover image for postID, if one exists. Pure lookup,
// no side effects.
func (s *ImageStore) Get(postID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	att, ok := s.images[postID]
	return att.Data, ok
}

// Attachment returns the full attachment record for postID, if one exists.
func (s *ImageStore) Attachment(postID string) (ImageAttachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	att, ok := s.images[postID]
	return att, ok
}

// Has returns true if a cover image exists for postID.
func (s *ImageStore) Has(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.images[postID]
	return ok
}

// Remove deletes the cover image for postID and reports whether a deletion
// occurred. Removing a non-existent attachment is not an error, and the
// mapping is only persisted when something changed.
func (s *ImageStore) Remove(postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.images[postID]
	if !ok {
		return false, nil
	}

	delete(s.images, postID)
	if err := s.persistLocked(); err != nil {
		s.images[postID] = prev
		return false, err
	}

	return true, nil
}

// EvictOlderThan deletes every attachment whose timestamp is older than
// maxAgeDays and returns the number of removed entries. The mapping is
// persisted once if anything was removed. Caller-triggered maintenance only.
func (s *ImageStore) EvictOlderThan(maxAgeDays int) (int, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -maxAgeDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[string]ImageAttachment)
	for postID, att := range s.images {
		if att.Timestamp.Before(cutoff) {
			removed[postID] = att
			delete(s.images, postID)
		}
	}

	if len(removed) == 0 {
		return 0, nil
	}

	if err := s.persistLocked(); err != nil {
		for postID, att := range removed {
			s.images[postID] = att
		}
		return 0, err
	}

	s.logger.Info("evicted old cover images", slog.Int("count", len(removed)))
	return len(removed), nil
}

func (s *ImageStore) persistLocked() error {
	data, err := json.Marshal(s.images)
	if err != nil {
		return fmt.Errorf("failed to serialize cover images: %w", err)
	}

	if err := s.repo.Save(KeyCoverImages, data); err != nil {
		return fmt.Errorf("failed to persist cover images: %w", err)
	}

	return nil
}

// sanitizeFilename slugifies the base name of an uploaded file while keeping
// its extension.
func sanitizeFilename(name string) string {
	if name == "" {
		return ""
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	return slug.Make(base) + strings.ToLower(ext)
}
