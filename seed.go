package blogvault

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"
)

// seedMeta is the frontmatter of a seed file. Both YAML and TOML frontmatter
// are accepted.
type seedMeta struct {
	Title    string   `yaml:"title" toml:"title"`
	Category string   `yaml:"category" toml:"category"`
	Excerpt  string   `yaml:"excerpt" toml:"excerpt"`
	Tags     []string `yaml:"tags" toml:"tags"`
	Status   string   `yaml:"status" toml:"status"`
	Featured bool     `yaml:"featured" toml:"featured"`
}

// SeedFromDir walks dir for markdown files and creates a post for each one,
// taking post fields from the frontmatter and the rendered body as content.
// It returns the number of posts created. Files without a title in their
// frontmatter fall back to the file name.
func SeedFromDir(ctx context.Context, store *PostStore, dir string) (int, error) {
	md := NewMarkdown()
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", path, err)
		}

		fields, err := parseSeedFile(md, source)
		if err != nil {
			return fmt.Errorf("failed to parse seed file %s: %w", path, err)
		}

		if fields.Title == "" {
			base := filepath.Base(path)
			fields.Title = base[:len(base)-len(filepath.Ext(base))]
		}

		if _, err := store.Create(ctx, fields, nil); err != nil {
			return fmt.Errorf("failed to create seeded post from %s: %w", path, err)
		}

		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	return count, nil
}

// parseSeedFile converts a markdown seed file into post fields. The body is
// rendered to HTML; the frontmatter supplies the remaining fields.
func parseSeedFile(md goldmark.Markdown, source []byte) (PostFields, error) {
	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return PostFields{}, fmt.Errorf("failed to convert markdown: %w", err)
	}

	fields := PostFields{Content: buf.String()}

	data := frontmatter.Get(pctx)
	if data == nil {
		return fields, nil
	}

	var meta seedMeta
	if err := data.Decode(&meta); err != nil {
		return PostFields{}, fmt.Errorf("failed to decode frontmatter: %w", err)
	}

	fields.Title = meta.Title
	fields.Category = meta.Category
	fields.Excerpt = meta.Excerpt
	fields.Tags = meta.Tags
	fields.Status = Status(meta.Status)
	fields.Featured = meta.Featured

	return fields, nil
}
