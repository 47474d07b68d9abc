package blogvault

import (
	"slices"
	"strings"
	"time"
)

// Status is the publication status of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid returns true if the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished:
		return true
	}
	return false
}

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// Post represents a blog post record.
//
// CoverImage is resolved from the ImageStore when a post is read and is never
// part of the persisted record; the attachment mapping is the source of truth
// for image payloads.
type Post struct {
	ID         string    `json:"id"`                   // ID is assigned at creation and never changes
	Title      string    `json:"title"`                // Title is the display title of the post
	Slug       string    `json:"slug"`                 // Slug is derived from the title on every create/update
	Content    string    `json:"content"`              // Content is the post body
	Category   string    `json:"category"`             // Category is a free-form category name
	Excerpt    string    `json:"excerpt,omitempty"`    // Excerpt is an optional short summary
	Tags       []string  `json:"tags"`                 // Tags is an ordered list of trimmed, non-empty tags
	Status     Status    `json:"status"`               // Status is draft or published
	Featured   bool      `json:"featured"`             // Featured is true if the post is highlighted
	CoverImage string    `json:"coverImage,omitempty"` // CoverImage is the resolved cover data URI, read-time only
	CreatedAt  time.Time `json:"createdAt"`            // CreatedAt is set once, at creation
	UpdatedAt  time.Time `json:"updatedAt"`            // UpdatedAt is refreshed on every mutation
}

// Clone returns a deep copy of the post. Store reads hand out clones so that
// callers cannot corrupt store state through the returned value.
func (p *Post) Clone() *Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	return &c
}

// PostFields carries the caller-supplied field values for creating a post.
// Validation of required fields (non-empty title and content at save time) is
// the caller's responsibility; the store only rejects unknown status values.
type PostFields struct {
	Title    string
	Content  string
	Category string
	Excerpt  string
	Tags     []string
	Status   Status
	Featured bool
}

// PostPatch carries a partial update. Nil fields are left unchanged.
type PostPatch struct {
	Title    *string
	Content  *string
	Category *string
	Excerpt  *string
	Tags     []string
	Status   *Status
	Featured *bool
}

func (patch PostPatch) apply(p *Post) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Tags != nil {
		p.Tags = slices.Clone(patch.Tags)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
}

// ParseTags splits a comma-delimited tag input into trimmed, non-empty tags,
// preserving order.
func ParseTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
