package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/storage"
)

// uploadKinds maps the allowed upload categories to their bucket prefixes.
var uploadKinds = map[string]bool{
	"project_po": true,
	"signature":  true,
	"photo":      true,
}

// UploadHandler stores workflow attachments (project PO files, signatures,
// damage and delivery photos) in the blob store.
type UploadHandler struct {
	blobs *storage.BlobStore
}

func NewUploadHandler(blobs *storage.BlobStore) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

// Upload handles POST /api/v1/uploads/:kind (multipart "file" field) and
// returns the object name for the caller to persist on a document.
func (h *UploadHandler) Upload(c *gin.Context) {
	kind := c.Param("kind")
	if !uploadKinds[kind] {
		BadRequest(c, "Unknown upload kind: "+kind)
		return
	}
	if h.blobs == nil {
		InternalError(c, "Storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required: "+err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "Open file: "+err.Error())
		return
	}
	defer file.Close()

	objectName, err := h.blobs.Upload(c.Request.Context(), kind, fileHeader.Filename,
		file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Created(c, gin.H{
		"object_name": objectName,
		"file_name":   fileHeader.Filename,
		"size":        fileHeader.Size,
	})
}

// Download handles GET /api/v1/uploads/url?object=... and returns a
// short-lived link to the stored object.
func (h *UploadHandler) Download(c *gin.Context) {
	objectName := c.Query("object")
	if objectName == "" {
		BadRequest(c, "object query param is required")
		return
	}
	if h.blobs == nil {
		InternalError(c, "Storage is not configured")
		return
	}

	u, err := h.blobs.PresignedURL(c.Request.Context(), objectName, 15*time.Minute)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"url": u})
}
