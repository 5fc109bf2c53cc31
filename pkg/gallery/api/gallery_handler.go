package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

const (
	// formOverhead is allowed on top of the image limit for the other
	// multipart fields and part headers.
	formOverhead = 1 << 20
	// multipartMemory is the part of a multipart body kept in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20
	// maxDownloadBody caps the JSON body naming the image to download.
	maxDownloadBody = 4 << 10

	listCacheControl     = "public, max-age=300"
	downloadCacheControl = "public, max-age=3600"
)

// GalleryHandler serves the list, upload and download endpoints
type GalleryHandler struct {
	service        gallery.Service
	maxUploadBytes int64
}

func NewGalleryHandler(service gallery.Service, maxUploadBytes int64) *GalleryHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = gallery.DefaultMaxUploadBytes
	}
	return &GalleryHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the router for gallery endpoints
func (h *GalleryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/list", h.ListImages)
	r.Post("/upload", h.UploadImage)
	r.Post("/download", h.DownloadImage)
	r.Get("/images/{image_id}", h.GetImage)
	r.Get(gallery.FilesPathPrefix+"/"+gallery.ImagesDir+"/{filename}", h.ServeImageFile)
	return r
}

// ListResponse is the aggregate list document
type ListResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Images  []gallery.ImageRecord `json:"images"`
}

// ListErrorResponse is returned when the metadata directory cannot be read
type ListErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Images  []gallery.ImageRecord `json:"images"`
}

// UploadResponse is returned after both upload commits succeeded
type UploadResponse struct {
	Success bool   `json:"success"`
	ImageID string `json:"imageId"`
	Message string `json:"message"`
}

// DownloadRequest names the image to download
type DownloadRequest struct {
	ImageID string `json:"imageId"`
}

// ErrorResponse is the body of every other failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListImages returns every resolvable metadata entry
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListImages(r.Context())
	if err != nil {
		slog.Error("Failed to list images", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ListErrorResponse{
			Error:   "Failed to fetch images",
			Message: err.Error(),
			Images:  []gallery.ImageRecord{},
		})
		return
	}

	images := result.Images
	if images == nil {
		images = []gallery.ImageRecord{}
	}

	w.Header().Set("Cache-Control", listCacheControl)
	render.JSON(w, r, ListResponse{
		Success: true,
		Count:   result.Count,
		Images:  images,
	})
}

// UploadImage accepts a multipart form with an image part and the
// descriptive fields, and stores both.
func (h *GalleryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			slog.Warn("Upload body too large", "limit", h.maxUploadBytes+formOverhead)
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Image exceeds maximum size of %d bytes", h.maxUploadBytes), "")
			return
		}
		slog.Warn("Failed to parse upload form", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No image provided", "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read image part", "error", err)
		writeError(w, r, http.StatusBadRequest, "Failed to read image", err.Error())
		return
	}

	result, err := h.service.UploadImage(r.Context(), gallery.UploadImageRequest{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Tags:        r.PostFormValue("tags"),
		Category:    r.PostFormValue("category"),
		AITool:      r.PostFormValue("aiTool"),
		License:     r.PostFormValue("license"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	})
	if err != nil {
		var validationErr *gallery.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, r, http.StatusBadRequest, validationErr.Error(), "")
			return
		}
		slog.Error("Failed to upload image", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to upload image", err.Error())
		return
	}

	render.JSON(w, r, UploadResponse{
		Success: true,
		ImageID: result.ImageID,
		Message: "Image uploaded successfully",
	})
}

// DownloadImage streams the binary of the image named in the JSON body
func (h *GalleryHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDownloadBody)
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.ImageID) == "" {
		writeError(w, r, http.StatusBadRequest, "Image ID is required", "")
		return
	}

	result, err := h.service.DownloadImage(r.Context(), req.ImageID)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to download image")
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Content-Disposition", attachment(result.Record.Filename))
	w.Header().Set("Cache-Control", downloadCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		slog.Warn("Failed to write image", "image_id", req.ImageID, "error", err)
	}
}

// GetImage returns the metadata record of one image
func (h *GalleryHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetImage(r.Context(), chi.URLParam(r, "image_id"))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch image")
		return
	}
	render.JSON(w, r, record)
}

// ServeImageFile writes an image binary inline. It backs the record URLs of
// stores that have no public address of their own.
func (h *GalleryHandler) ServeImageFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	result, err := h.service.GetImageFile(r.Context(), filename)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch image")
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", downloadCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		slog.Warn("Failed to write image", "filename", filename, "error", err)
	}
}

// Health reports that the process is serving
func (h *GalleryHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *GalleryHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErr *gallery.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, validationErr.Error(), "")
	case errors.Is(err, gallery.ErrImageNotFound):
		writeError(w, r, http.StatusNotFound, "Image not found", "")
	default:
		slog.Error(fallback, "error", err)
		writeError(w, r, http.StatusInternalServerError, fallback, err.Error())
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg, Message: detail})
}

func attachment(filename string) string {
	filename = strings.NewReplacer(`"`, "", `\`, "", "\r", "", "\n", "").Replace(filename)
	return fmt.Sprintf(`attachment; filename="%s"`, filename)
}
