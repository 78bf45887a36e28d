package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/services"
)

type IncidentHandler struct {
	log       *logger.Logger
	incidents services.IncidentService
}

func NewIncidentHandler(baseLog *logger.Logger, incidents services.IncidentService) *IncidentHandler {
	return &IncidentHandler{
		log:       baseLog.With("handler", "IncidentHandler"),
		incidents: incidents,
	}
}

type incidentBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (h *IncidentHandler) Create(c *gin.Context) {
	var body incidentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	inc, err := h.incidents.Create(c.Request.Context(), services.IncidentInput{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		Priority:    body.Priority,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, inc)
}

func (h *IncidentHandler) List(c *gin.Context) {
	incs, err := h.incidents.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, incs)
}

func (h *IncidentHandler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	inc, err := h.incidents.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inc)
}

func (h *IncidentHandler) SetStatus(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	inc, err := h.incidents.SetStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inc)
}

func (h *IncidentHandler) Reopen(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	inc, err := h.incidents.Reopen(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inc)
}

func (h *IncidentHandler) Delete(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.incidents.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}
