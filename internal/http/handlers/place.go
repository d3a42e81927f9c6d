package handlers

import (
	"bytes"
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/http/response"
	"github.com/yungbote/placeshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
	"github.com/yungbote/placeshare-backend/internal/services"
)

const msgCreateFailed = "Creating place failed, please try again."

type PlaceHandler struct {
	log           *logger.Logger
	places        services.PlaceService
	images        objectstore.Store
	maxImageBytes int64
}

func NewPlaceHandler(log *logger.Logger, places services.PlaceService, images objectstore.Store, maxImageBytes int64) *PlaceHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &PlaceHandler{
		log:           log.With("handler", "PlaceHandler"),
		places:        places,
		images:        images,
		maxImageBytes: maxImageBytes,
	}
}

type placeView struct {
	*place.Place
	ImageURL string `json:"image_url,omitempty"`
}

func (h *PlaceHandler) view(p *place.Place) placeView {
	v := placeView{Place: p}
	if h.images != nil && p.Image != "" {
		v.ImageURL = h.images.PublicURL(p.Image)
	}
	return v
}

// GET /api/places/:pid
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	const op = "PlaceHandler.GetPlace"
	id, err := parseID(op, c.Param("pid"), services.MsgPlaceNotFound)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	p, err := h.places.GetPlace(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"place": h.view(p)})
}

// GET /api/places/user/:uid
func (h *PlaceHandler) ListUserPlaces(c *gin.Context) {
	const op = "PlaceHandler.ListUserPlaces"
	id, err := parseID(op, c.Param("uid"), services.MsgUserPlacesNotFound)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.places.ListPlacesByUser(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	out := make([]placeView, 0, len(rows))
	for _, p := range rows {
		out = append(out, h.view(p))
	}
	response.RespondOK(c, gin.H{"places": out})
}

type createPlaceForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required,min=5"`
	Address     string `form:"address" binding:"required"`
}

// POST /api/places (multipart/form-data)
// fields: title, description, address, image
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	const op = "PlaceHandler.CreatePlace"
	ctx := c.Request.Context()

	var form createPlaceForm
	if err := c.ShouldBind(&form); err != nil {
		response.RespondError(c, bindError(op, err))
		return
	}
	if h.images == nil {
		response.RespondError(c, domainagg.NewError(domainagg.CodeInternal, op, msgCreateFailed, nil))
		return
	}
	raw, ext, err := readImage(c, op, "image", h.maxImageBytes)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	key := "images/" + uuid.NewString() + "." + ext
	if err := h.images.Put(ctx, key, bytes.NewReader(raw)); err != nil {
		h.log.Error("Failed to store place image", "key", key, "error", err)
		response.RespondError(c, domainagg.NewError(domainagg.CodeDependency, op, msgCreateFailed, err))
		return
	}

	p, err := h.places.CreatePlace(ctx, services.CreatePlaceInput{
		Title:       form.Title,
		Description: form.Description,
		Address:     form.Address,
		Image:       key,
	}, ctxutil.ActingUserID(ctx))
	if err != nil {
		h.discardUpload(ctx, key)
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"place": h.view(p)})
}

type updatePlaceBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
}

// PATCH /api/places/:pid
// body: { "title": "...", "description": "..." }
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	const op = "PlaceHandler.UpdatePlace"
	var body updatePlaceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, bindError(op, err))
		return
	}
	id, err := parseID(op, c.Param("pid"), services.MsgPlaceNotFound)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ctx := c.Request.Context()
	p, err := h.places.UpdatePlace(ctx, id, ctxutil.ActingUserID(ctx), services.UpdatePlaceInput{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"place": h.view(p)})
}

// DELETE /api/places/:pid
func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	const op = "PlaceHandler.DeletePlace"
	id, err := parseID(op, c.Param("pid"), "Could not find place for this id.")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.places.DeletePlace(ctx, id, ctxutil.ActingUserID(ctx)); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Deleted place."})
}

func (h *PlaceHandler) discardUpload(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := h.images.Delete(ctx, key); err != nil {
		h.log.Warn("Failed to discard upload", "key", key, "error", err)
	}
}
