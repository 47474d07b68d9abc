package blogvault_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blogvault/blogvault"
)

func writeSeedFile(t *testing.T, dir, name, frontmatter, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(frontmatter+body), 0644))
}

func yamlFrontmatter(t *testing.T, meta map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(meta)
	require.NoError(t, err)
	return fmt.Sprintf("---\n%s---\n\n", data)
}

func TestSeedFromDir(t *testing.T) {
	dir := t.TempDir()

	writeSeedFile(t, dir, "welcome.md", yamlFrontmatter(t, map[string]any{
		"title":    "Welcome to the Blog",
		"category": "meta",
		"excerpt":  "First post",
		"tags":     []string{"intro", "meta"},
		"status":   "published",
		"featured": true,
	}), "# Welcome\n\nThis is the first post.")

	writeSeedFile(t, dir, filepath.Join("guides", "setup.md"),
		"+++\ntitle = \"Setup Guide\"\ncategory = \"guides\"\n+++\n\n", "How to set things up.")

	writeSeedFile(t, dir, "untitled.md", "", "No frontmatter here.")

	// Non-markdown files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644))

	posts, _, _ := newTestStores(t, newMemRepo())

	count, err := blogvault.SeedFromDir(context.Background(), posts, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	welcome, err := posts.GetBySlug("welcome-to-the-blog")
	require.NoError(t, err)
	assert.Equal(t, "meta", welcome.Category)
	assert.Equal(t, "First post", welcome.Excerpt)
	assert.Equal(t, []string{"intro", "meta"}, welcome.Tags)
	assert.Equal(t, blogvault.StatusPublished, welcome.Status)
	assert.True(t, welcome.Featured)
	assert.Contains(t, welcome.Content, "Welcome")
	assert.Contains(t, welcome.Content, "first post")

	guide, err := posts.GetBySlug("setup-guide")
	require.NoError(t, err)
	assert.Equal(t, "guides", guide.Category)
	assert.Equal(t, blogvault.StatusDraft, guide.Status)

	// Files without a title fall back to the file name.
	untitled, err := posts.GetBySlug("untitled")
	require.NoError(t, err)
	assert.Equal(t, "untitled", untitled.Title)
}

func TestSeedFromDir_BadFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "bad.md", "---\ntitle: [unclosed\n---\n\n", "Body")

	posts, _, _ := newTestStores(t, newMemRepo())

	_, err := blogvault.SeedFromDir(context.Background(), posts, dir)
	assert.Error(t, err)
}
