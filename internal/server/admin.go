package server

import (
	"errors"
	"net/http"

	"remila_sections/internal/admin"
	"remila_sections/internal/domain"
	"remila_sections/internal/objectstore"
	"remila_sections/internal/storage/postgres"
)

const maxUploadSize = 32 << 20

type moveRequest struct {
	SiteSlug  string          `json:"siteSlug"`
	Direction admin.Direction `json:"direction"`
}

type moveResponse struct {
	Moved bool `json:"moved"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (s *Server) moveItem(w http.ResponseWriter, r *http.Request) {
	if s.admin == nil {
		ErrorResponse(w, http.StatusServiceUnavailable, admin.ErrOrderingDisabled.Error())
		return
	}

	var req moveRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := domain.Collection(r.PathValue("collection"))
	moved, err := s.admin.Move(r.Context(), c, req.SiteSlug, r.PathValue("id"), req.Direction)
	if err != nil {
		s.adminError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, moveResponse{Moved: moved})
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	if s.admin == nil {
		ErrorResponse(w, http.StatusServiceUnavailable, admin.ErrStorageDisabled.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	q := r.URL.Query()
	url, err := s.admin.Upload(r.Context(), file, contentType, q.Get("bucket"), q.Get("path"))
	if err != nil {
		s.adminError(w, err)
		return
	}
	JSONResponse(w, http.StatusCreated, uploadResponse{URL: url})
}

// deleteFile accepts either ?path= or the public ?url= of the object.
func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	if s.admin == nil {
		ErrorResponse(w, http.StatusServiceUnavailable, admin.ErrStorageDisabled.Error())
		return
	}

	q := r.URL.Query()
	bucket, path := q.Get("bucket"), q.Get("path")
	if path == "" && q.Get("url") != "" {
		p, ok := objectstore.ExtractPath(q.Get("url"), bucket)
		if !ok {
			ErrorResponse(w, http.StatusBadRequest, "url does not point into bucket "+bucket)
			return
		}
		path = p
	}

	if err := s.admin.Delete(r.Context(), bucket, path); err != nil {
		s.adminError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrNotOrdered),
		errors.Is(err, admin.ErrMissingSiteSlug),
		errors.Is(err, admin.ErrInvalidDirection),
		errors.Is(err, objectstore.ErrInvalidBucket),
		errors.Is(err, objectstore.ErrInvalidPath):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, postgres.ErrItemNotFound):
		ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, admin.ErrStorageDisabled),
		errors.Is(err, admin.ErrOrderingDisabled):
		ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("admin request failed", "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
