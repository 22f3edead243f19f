package transport

import (
	"mime/multipart"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	BucketThumbnails   = "thumbnails"
	BucketProductFiles = "product-files"

	maxUploadMemory = 32 << 20
	maxUploadBytes  = 200 << 20
)

var uploadBuckets = map[string]string{
	"thumbnail": BucketThumbnails,
	"file":      BucketProductFiles,
}

// UploadResponse lists the public URLs in the order the files were sent
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// UploadHandler accepts thumbnails and deliverable files for products
type UploadHandler struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(s storage.Storage, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		storage: s,
		logger:  logger,
	}
}

// RegisterRoutes registers the upload route
func (h *UploadHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Post("/api/creator/uploads", h.Upload)
}

// Upload stores every "files" part of a multipart form in the bucket picked
// by the "kind" field. Files go up one at a time; on failure the URLs that
// made it are returned with the error.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	bucket, ok := uploadBuckets[r.FormValue("kind")]
	if !ok {
		middleware.RespondWithFieldErrors(w, map[string]string{"kind": "Must be one of: thumbnail file"})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		middleware.RespondWithFieldErrors(w, map[string]string{"files": "Select at least one file"})
		return
	}

	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			middleware.RespondWithError(w, http.StatusBadRequest, "failed to read "+fh.Filename)
			return
		}
		files = append(files, storage.File{
			Name:        fh.Filename,
			ContentType: contentType(fh),
			Body:        f,
		})
	}
	defer closeAll(files)

	urls, err := storage.UploadAll(r.Context(), h.storage, bucket, creator, files)
	if err != nil {
		h.logger.Error("Upload failed",
			zap.String("creator_id", creator.String()),
			zap.String("bucket", bucket),
			zap.Int("uploaded", len(urls)),
			zap.Error(err),
		)
		middleware.RespondWithErrorDetails(w, http.StatusBadGateway, "upload failed", map[string]interface{}{
			"urls": urls,
		})
		return
	}

	h.logger.Info("Files uploaded",
		zap.String("creator_id", creator.String()),
		zap.String("bucket", bucket),
		zap.Int("count", len(urls)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, UploadResponse{URLs: urls})
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func closeAll(files []storage.File) {
	for _, f := range files {
		if c, ok := f.Body.(multipart.File); ok {
			c.Close()
		}
	}
}
