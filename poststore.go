package blogvault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PostStore is the single source of truth for post records. It derives slugs
// from titles, orchestrates the cover image lifecycle through an ImageStore,
// and persists the whole collection atomically under KeyPosts.
//
// The collection preserves insertion order. Slugs are not guaranteed unique;
// GetBySlug returns the first match in collection order.
type PostStore struct {
	repo   Repository
	images *ImageStore
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	posts []*Post
	wg    sync.WaitGroup
}

// NewPostStore creates a PostStore backed by repo and loads the persisted
// collection. A missing blob starts the store empty.
func NewPostStore(repo Repository, images *ImageStore, opts Options) (*PostStore, error) {
	s := &PostStore{
		repo:   repo,
		images: images,
		logger: opts.logger(),
		now:    opts.clock(),
	}

	data, err := repo.Load(KeyPosts)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	if err := json.Unmarshal(data, &s.posts); err != nil {
		return nil, fmt.Errorf("failed to deserialize posts: %w", err)
	}

	return s, nil
}

// Create assigns a new ID, derives the slug from the title, appends the post
// to the collection, and persists it. If upload is non-nil the cover image is
// encoded and stored asynchronously; the attachment becomes visible once the
// encode completes, so an immediate re-read may still see no cover image.
//
// If persisting the collection fails, the in-memory state is rolled back and
// the error returned.
func (s *PostStore) Create(ctx context.Context, fields PostFields, upload *ImageUpload) (*Post, error) {
	if fields.Status == "" {
		fields.Status = StatusDraft
	}
	if !fields.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, fields.Status)
	}

	s.mu.Lock()
	now := s.now().UTC()
	post := &Post{
		ID:        newPostID(),
		Title:     fields.Title,
		Slug:      Slugify(fields.Title),
		Content:   fields.Content,
		Category:  fields.Category,
		Excerpt:   fields.Excerpt,
		Tags:      fields.Tags,
		Status:    fields.Status,
		Featured:  fields.Featured,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.posts = append(s.posts, post)
	if err := s.persistLocked(); err != nil {
		s.posts = s.posts[:len(s.posts)-1]
		s.mu.Unlock()
		return nil, err
	}
	resolved := s.resolveLocked(post)
	s.mu.Unlock()

	if upload != nil {
		s.saveCoverAsync(ctx, post.ID, *upload)
	}

	return resolved, nil
}

// Update merges patch over the post with the given ID, recomputes the slug
// from the (possibly new) title, refreshes UpdatedAt, and persists the
// collection. Returns ErrPostNotFound for an unknown ID.
//
// If removeCover is true the cover attachment is deleted and the reference
// cleared; this takes precedence over upload. Otherwise a non-nil upload
// overwrites the attachment asynchronously.
func (s *PostStore) Update(ctx context.Context, id string, patch PostPatch, upload *ImageUpload, removeCover bool) (*Post, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
	}

	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrPostNotFound
	}

	prev := s.posts[idx]
	next := prev.Clone()
	patch.apply(next)
	next.Slug = Slugify(next.Title)
	next.UpdatedAt = s.now().UTC()

	s.posts[idx] = next
	if err := s.persistLocked(); err != nil {
		s.posts[idx] = prev
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	if removeCover {
		if _, err := s.images.Remove(id); err != nil {
			return nil, fmt.Errorf("post was updated but cover removal failed: %w", err)
		}
		return next.Clone(), nil
	}

	if upload != nil {
		s.saveCoverAsync(ctx, id, *upload)
	}

	s.mu.Lock()
	resolved := s.resolveLocked(next)
	s.mu.Unlock()
	return resolved, nil
}

// Delete removes the post with the given ID from the collection and persists
// it. Deleting an unknown ID is a no-op. The associated cover attachment is
// unconditionally removed in the same logical operation so that no orphaned
// attachment persists.
func (s *PostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx >= 0 {
		prev := s.posts
		s.posts = append(append([]*Post{}, s.posts[:idx]...), s.posts[idx+1:]...)
		if err := s.persistLocked(); err != nil {
			s.posts = prev
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	if _, err := s.images.Remove(id); err != nil {
		return fmt.Errorf("post was deleted but cover removal failed: %w", err)
	}

	return nil
}

// GetByID returns a copy of the post with the given ID, with its cover image
// resolved, or ErrPostNotFound.
func (s *PostStore) GetByID(id string) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, ErrPostNotFound
	}
	return s.resolveLocked(s.posts[idx]), nil
}

// GetBySlug returns a copy of the first post (in collection order) whose slug
// equals slug, with its cover image resolved, or ErrPostNotFound.
func (s *PostStore) GetBySlug(slug string) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, post := range s.posts {
		if post.Slug == slug {
			return s.resolveLocked(post), nil
		}
	}
	return nil, ErrPostNotFound
}

// List returns copies of all posts in insertion order with cover images
// resolved from the attachment store.
func (s *PostStore) List() []*Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]*Post, len(s.posts))
	for i, post := range s.posts {
		posts[i] = s.resolveLocked(post)
	}
	return posts
}

// Wait blocks until all in-flight cover image encodes have settled. It does
// not prevent new encodes from starting; call it during shutdown or when a
// test needs to observe the attachment of a just-created post.
func (s *PostStore) Wait() {
	s.wg.Wait()
}

// saveCoverAsync stores a cover image without blocking the mutation that
// supplied it. The encode is detached from the caller's context: an in-flight
// encode is never cancelled, so a concurrent delete or cover removal may be
// overwritten by a later-finishing save. Callers re-query to observe the
// settled state.
func (s *PostStore) saveCoverAsync(ctx context.Context, postID string, upload ImageUpload) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.images.Save(ctx, postID, upload); err != nil {
			s.logger.Error("failed to save cover image",
				slog.String("postID", postID),
				slog.String("error", err.Error()))
		}
	}()
}

// resolveLocked returns a defensive copy of post with its cover image
// reference populated from the attachment store.
func (s *PostStore) resolveLocked(post *Post) *Post {
	c := post.Clone()
	if data, ok := s.images.Get(post.ID); ok {
		c.CoverImage = data
	}
	return c
}

func (s *PostStore) indexOfLocked(id string) int {
	for i, post := range s.posts {
		if post.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked serializes the whole collection and writes it under KeyPosts.
// Collection entries never carry a resolved cover image; it is resolved per
// read from the attachment store.
func (s *PostStore) persistLocked() error {
	data, err := json.Marshal(s.posts)
	if err != nil {
		return fmt.Errorf("failed to serialize posts: %w", err)
	}

	if err := s.repo.Save(KeyPosts, data); err != nil {
		return fmt.Errorf("failed to persist posts: %w", err)
	}

	return nil
}

// newPostID returns a time-ordered unique identifier.
func newPostID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
