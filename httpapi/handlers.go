package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/blogvault/blogvault"
)

// maxUploadSize bounds multipart form parsing, cover image included.
const maxUploadSize = 10 << 20 // 10MB

func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.posts.List())
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleGetPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleGetPostHTML(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	html, err := blogvault.RenderMarkdown(s.md, post.Content)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

// handleGetCover serves the raw cover image bytes with the stored media type.
func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	att, ok := s.images.Attachment(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no cover image")
		return
	}

	_, payload, found := strings.Cut(att.Data, ";base64,")
	if !found {
		writeError(w, http.StatusInternalServerError, "malformed cover image payload")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "malformed cover image payload")
		return
	}

	w.Header().Set("Content-Type", att.MediaType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	fields := blogvault.PostFields{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Category: r.FormValue("category"),
		Excerpt:  r.FormValue("excerpt"),
		Tags:     blogvault.ParseTags(r.FormValue("tags")),
		Status:   blogvault.Status(r.FormValue("status")),
	}

	if v := r.FormValue("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid featured value")
			return
		}
		fields.Featured = featured
	}

	if fields.Title == "" || fields.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	upload, err := coverUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := s.posts.Create(r.Context(), fields, upload)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	patch, err := patchFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	removeCover := false
	if v := r.FormValue("removeCover"); v != "" {
		removeCover, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid removeCover value")
			return
		}
	}

	upload, err := coverUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := s.posts.Update(r.Context(), chi.URLParam(r, "id"), patch, upload, removeCover)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvictCovers(w http.ResponseWriter, r *http.Request) {
	days := s.coverMaxAgeDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid days value")
			return
		}
		days = parsed
	}

	removed, err := s.images.EvictOlderThan(days)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// patchFromForm builds a partial update from the fields actually present in
// the multipart form, so that omitted fields stay unchanged.
func patchFromForm(r *http.Request) (blogvault.PostPatch, error) {
	var patch blogvault.PostPatch

	form := r.MultipartForm.Value
	if vals, ok := form["title"]; ok && len(vals) > 0 {
		patch.Title = &vals[0]
	}
	if vals, ok := form["content"]; ok && len(vals) > 0 {
		patch.Content = &vals[0]
	}
	if vals, ok := form["category"]; ok && len(vals) > 0 {
		patch.Category = &vals[0]
	}
	if vals, ok := form["excerpt"]; ok && len(vals) > 0 {
		patch.Excerpt = &vals[0]
	}
	if vals, ok := form["tags"]; ok && len(vals) > 0 {
		tags := blogvault.ParseTags(vals[0])
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = tags
	}
	if vals, ok := form["status"]; ok && len(vals) > 0 {
		status := blogvault.Status(vals[0])
		patch.Status = &status
	}
	if vals, ok := form["featured"]; ok && len(vals) > 0 {
		featured, err := strconv.ParseBool(vals[0])
		if err != nil {
			return blogvault.PostPatch{}, fmt.Errorf("invalid featured value")
		}
		patch.Featured = &featured
	}

	return patch, nil
}

// coverUpload extracts the optional cover file from the form. The bytes are
// read eagerly: the store encodes covers after the handler returns, and the
// multipart temp files do not outlive the request.
func coverUpload(r *http.Request) (*blogvault.ImageUpload, error) {
	file, header, err := r.FormFile("cover")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid cover upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover upload: %w", err)
	}

	return &blogvault.ImageUpload{
		Reader:   bytes.NewReader(data),
		Filename: header.Filename,
	}, nil
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, blogvault.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, blogvault.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, blogvault.ErrImageDecode):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("internal error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
