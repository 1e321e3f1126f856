package media

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/format"
	"github.com/radif/medias/internal/response"
)

// FilesField is the multipart field uploads are read from.
const FilesField = "files[]"

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler holds HTTP handlers for media endpoints.
type Handler struct {
	svc       *Service
	log       *zap.Logger
	maxMemory int64
}

// NewHandler creates a new media Handler. maxMemory is the multipart memory
// budget; larger parts spill to temporary files.
func NewHandler(svc *Service, log *zap.Logger, maxMemory int64) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return &Handler{svc: svc, log: log, maxMemory: maxMemory}
}

// Upload godoc
//
//	@Summary		Upload files
//	@Description	Store every "files[]" entry and record it in the medias table. Returns one public URL per file, in input order.
//	@Tags			medias
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files[]	formData	file	true	"Files to upload"
//	@Success		201		{array}		string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		400		{object}	response.MessageBody
//	@Router			/medias [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.Failed(w, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll() //nolint:errcheck
	}

	var (
		files []File
		total int64
	)
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File[FilesField] {
			files = append(files, FileFromHeader(fh))
			total += fh.Size
		}
	}

	urls, err := h.svc.Upload(r.Context(), files)
	if err != nil {
		if apperr.Is(err, apperr.Validation) {
			response.BadRequest(w, err.Error())
			return
		}
		h.log.Error("upload failed",
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Int("files", len(files)),
			zap.Error(err),
		)
		response.Failed(w, err)
		return
	}

	h.log.Debug("files uploaded",
		zap.Int("files", len(urls)),
		zap.String("size", format.Bytes(total, 1, format.SizeNormal)),
	)
	response.Created(w, urls)
}

// List godoc
//
//	@Summary		List uploaded files
//	@Description	Returns recent media records with their resolved public URLs.
//	@Tags			medias
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Offset"
//	@Success		200		{array}		Item
//	@Failure		400		{object}	response.MessageBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/medias [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultListLimit)
	if err != nil || limit <= 0 {
		response.Message(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil || offset < 0 {
		response.Message(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	items, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		h.log.Error("list medias failed", zap.Error(err))
		response.InternalError(w)
		return
	}
	if items == nil {
		items = []Item{}
	}
	response.OK(w, items)
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
