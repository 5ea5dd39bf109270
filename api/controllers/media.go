package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/printforge/printshop-backend/api/responses"
	"github.com/printforge/printshop-backend/api/validators"
	mediasvc "github.com/printforge/printshop-backend/internal/media"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/logger"
)

type mediaPresignRequest struct {
	MediaKind string `json:"media_kind" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,min=1"`
}

func (req mediaPresignRequest) toInput() (mediasvc.PresignInput, error) {
	kind, err := enums.ParseMediaKind(strings.TrimSpace(req.MediaKind))
	if err != nil {
		return mediasvc.PresignInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid media_kind")
	}
	return mediasvc.PresignInput{
		Kind:      kind,
		MimeType:  req.MimeType,
		FileName:  req.FileName,
		SizeBytes: req.SizeBytes,
	}, nil
}

type mediaResponse struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newMediaResponse(media *models.Media) mediaResponse {
	return mediaResponse{
		ID:          media.ID,
		Kind:        string(media.Kind),
		ObjectKey:   media.ObjectKey,
		ContentType: media.ContentType,
		FileName:    media.FileName,
		SizeBytes:   media.SizeBytes,
		CreatedAt:   media.CreatedAt,
		UpdatedAt:   media.UpdatedAt,
	}
}

// MediaPresign creates a media record and returns a signed PUT URL.
func MediaPresign(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var payload mediaPresignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.PresignUpload(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}

// MediaDetail returns one media record by id.
func MediaDetail(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		media, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMediaResponse(media))
	}
}

// MediaDelete removes an unreferenced media record and its stored object.
func MediaDelete(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
