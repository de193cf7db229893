package uploads

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"toddlerdoc-backend/internal/shared/server/middleware"
	"toddlerdoc-backend/internal/shared/server/respond"
	"toddlerdoc-backend/internal/shared/storage/object"
	"toddlerdoc-backend/internal/shared/telemetry"
	"toddlerdoc-backend/internal/shared/util"
)

const (
	maxUploadBytes = 10 << 20
	presignExpires = 15 * time.Minute
)

// allowedContentTypes is the upload allow-list. Validation happens here at
// the presign boundary; the documents endpoint records whatever it is sent.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"application/pdf": {},
}

// Handler issues upload URLs against the configured object store.
type Handler struct {
	Store object.ObjectStore
	// LocalDirect registers the direct PUT route used by the local store,
	// whose "presigned" URLs point back at this server.
	LocalDirect bool
}

// NewHandler constructs a Handler.
func NewHandler(store object.ObjectStore, localDirect bool) *Handler {
	return &Handler{Store: store, LocalDirect: localDirect}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
	if h.LocalDirect {
		rg.PUT("/uploads/direct/*fileKey", h.directUpload)
	}
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	FileKey          string `json:"fileKey"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", []map[string]string{
			{"field": "contentType", "issue": "not_allowed"},
		})
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", []map[string]string{
			{"field": "sizeBytes", "issue": "out_of_range"},
		})
		return
	}

	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	fileKey := path.Join(util.HashUserKey(userID), uuid.NewString()+"_"+sanitized)

	uploadURL, err := h.Store.PresignPut(c.Request.Context(), fileKey, req.ContentType, presignExpires)
	if err != nil {
		telemetry.Error("uploads.presign_failed", map[string]any{
			"err":         err.Error(),
			"file_key":    fileKey,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        uploadURL,
		FileKey:          fileKey,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

func (h *Handler) directUpload(c *gin.Context) {
	fileKey := strings.TrimPrefix(c.Param("fileKey"), "/")
	if fileKey == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file key is required", nil)
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	defer body.Close()

	contentType := c.GetHeader("Content-Type")
	size, err := h.Store.SaveWithKey(c.Request.Context(), fileKey, contentType, body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store file", nil)
		return
	}

	respond.OK(c, gin.H{
		"fileKey":   fileKey,
		"sizeBytes": size,
	})
}
