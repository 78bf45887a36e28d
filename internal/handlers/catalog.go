package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/services"
)

type CatalogHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewCatalogHandler(baseLog *logger.Logger, catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:     baseLog.With("handler", "CatalogHandler"),
		catalog: catalog,
	}
}

func (h *CatalogHandler) Register(c *gin.Context) {
	in, err := parseCatalogForm(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	view, err := h.catalog.Register(c.Request.Context(), *in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, view)
}

// Update handles both field edits and undo. A JSON body with {"undo": true}
// restores the soft-deleted item of that id; a multipart body edits it.
func (h *CatalogHandler) Update(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body struct {
			Undo bool `json:"undo"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			RespondError(c, apperr.Wrap(apperr.KindValidation, "invalid JSON body", err))
			return
		}
		if !body.Undo {
			RespondError(c, apperr.E(apperr.KindValidation, "JSON updates support only the undo flag"))
			return
		}
		view, err := h.catalog.Undo(c.Request.Context(), id)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, view)
		return
	}

	in, err := parseCatalogForm(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	view, err := h.catalog.Update(c.Request.Context(), id, *in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	view, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *CatalogHandler) GetByCode(c *gin.Context) {
	view, err := h.catalog.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *CatalogHandler) List(c *gin.Context) {
	if machine := strings.TrimSpace(c.Query("machine")); machine != "" {
		views, err := h.catalog.ListByMachine(c.Request.Context(), machine)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, views)
		return
	}
	views, err := h.catalog.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, views)
}

func (h *CatalogHandler) ListSupplies(c *gin.Context) {
	items, err := h.catalog.ListSupplies(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, items)
}

func (h *CatalogHandler) CodeExists(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		RespondError(c, apperr.E(apperr.KindValidation, "code query parameter is required"))
		return
	}
	var excludeID uint
	if raw := c.Query("exclude_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			RespondError(c, apperr.E(apperr.KindValidation, "exclude_id must be numeric"))
			return
		}
		excludeID = uint(v)
	}
	exists, err := h.catalog.CodeExists(c.Request.Context(), code, excludeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"exists": exists})
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.catalog.SoftDelete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

func (h *CatalogHandler) Machines(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	machines, err := h.catalog.Machines(c.Request.Context(), strings.TrimSpace(c.Query("q")), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, machines)
}

func paramID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Ef(apperr.KindValidation, "invalid id: %q", raw)
	}
	return uint(v), nil
}

func parseCatalogForm(c *gin.Context) (*services.CatalogItemInput, error) {
	in := &services.CatalogItemInput{
		Kind:              c.PostForm("kind"),
		ManufacturingCode: c.PostForm("manufacturing_code"),
		InternalCode:      c.PostForm("internal_code"),
		Name:              c.PostForm("name"),
		Category:          c.PostForm("category"),
		Material:          c.PostForm("material"),
		MachineType:       c.PostForm("machine_type"),
		RemovePhoto:       parseBool(c.PostForm("remove_photo")),
		Cells:             formStrings(c, "cells"),
		Machines:          formStrings(c, "machines"),
	}

	var err error
	if in.HeightMin, err = formFloat(c, "height_min"); err != nil {
		return nil, err
	}
	if in.HeightMax, err = formFloat(c, "height_max"); err != nil {
		return nil, err
	}
	if in.RPM, err = formInt(c, "rpm"); err != nil {
		return nil, err
	}
	if in.FeedRate, err = formFloat(c, "feed_rate"); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(c.PostForm("composition")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Composition); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "invalid composition JSON", err)
		}
	}

	if file, header, err := c.Request.FormFile("photo"); err == nil {
		upload, err := readUpload(file, header)
		if err != nil {
			return nil, err
		}
		in.Photo = upload
	}
	return in, nil
}

// formStrings accepts either repeated form values or one JSON array.
func formStrings(c *gin.Context, field string) []string {
	values := c.PostFormArray(field)
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(values[0]), &decoded); err == nil {
			values = decoded
		}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func formFloat(c *gin.Context, field string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil, apperr.Ef(apperr.KindValidation, "%s must be numeric", field)
	}
	return &v, nil
}

func formInt(c *gin.Context, field string) (*int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Ef(apperr.KindValidation, "%s must be an integer", field)
	}
	return &v, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func readUpload(file multipart.File, header *multipart.FileHeader) (*services.PhotoUpload, error) {
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "failed to read uploaded file", err)
	}
	return &services.PhotoUpload{Filename: header.Filename, Data: data}, nil
}
