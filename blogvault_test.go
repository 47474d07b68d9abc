package blogvault_test

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blogvault/blogvault"
)

// memRepo is a simple in-memory Repository with save-failure injection.
type memRepo struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	failSaves bool
}

func newMemRepo() *memRepo {
	return &memRepo{blobs: make(map[string][]byte)}
}

func (r *memRepo) Load(key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.blobs[key]
	if !ok {
		return nil, blogvault.ErrKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *memRepo) Save(key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSaves {
		return io.ErrShortWrite
	}
	r.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (r *memRepo) Close() error { return nil }

func (r *memRepo) setFailSaves(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSaves = fail
}

// testClock is a manually advanced clock.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStores(t *testing.T, repo blogvault.Repository) (*blogvault.PostStore, *blogvault.ImageStore, *testClock) {
	t.Helper()

	clock := newTestClock()
	opts := blogvault.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock.Now,
	}

	images, err := blogvault.NewImageStore(repo, opts)
	require.NoError(t, err)

	posts, err := blogvault.NewPostStore(repo, images, opts)
	require.NoError(t, err)

	return posts, images, clock
}

// tinyPNG returns a valid encoded PNG of the given width.
func tinyPNG(t *testing.T, width int) []byte {
	t.Helper()

	var buf bytes.Buffer
	err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, 1)))
	require.NoError(t, err)
	return buf.Bytes()
}
