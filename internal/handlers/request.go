package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/services"
)

type RequestHandler struct {
	log      *logger.Logger
	requests services.RequestService
}

func NewRequestHandler(baseLog *logger.Logger, requests services.RequestService) *RequestHandler {
	return &RequestHandler{
		log:      baseLog.With("handler", "RequestHandler"),
		requests: requests,
	}
}

type submitRequestBody struct {
	ItemID        uint   `json:"item_id" form:"item_id"`
	RequesterName string `json:"requester_name" form:"requester_name"`
	Operator      string `json:"operator" form:"operator"`
	Machine       string `json:"machine" form:"machine"`
	Quantity      int    `json:"quantity" form:"quantity"`
	Urgency       string `json:"urgency" form:"urgency"`
	Justification string `json:"justification" form:"justification"`
}

func (h *RequestHandler) Submit(c *gin.Context) {
	var body submitRequestBody
	if err := c.ShouldBind(&body); err != nil {
		RespondError(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	row, err := h.requests.Submit(c.Request.Context(), services.SubmitRequestInput{
		ItemID:        body.ItemID,
		RequesterName: body.RequesterName,
		Operator:      body.Operator,
		Machine:       body.Machine,
		Quantity:      body.Quantity,
		Urgency:       body.Urgency,
		Justification: body.Justification,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, row)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	row, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *RequestHandler) List(c *gin.Context) {
	all := parseBool(c.Query("all"))
	rows, err := h.requests.List(c.Request.Context(), all)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rows)
}

// Fulfill takes a multipart form: status plus optional photo files under
// "photo_*" fields, a no_photos flag, corrected_code and fulfilled_by.
func (h *RequestHandler) Fulfill(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	in := services.FulfillInput{
		Status:        c.PostForm("status"),
		NoPhotos:      parseBool(c.PostForm("no_photos")),
		CorrectedCode: c.PostForm("corrected_code"),
		FulfilledBy:   c.PostForm("fulfilled_by"),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for field, headers := range form.File {
			if !strings.HasPrefix(field, "photo") {
				continue
			}
			for _, header := range headers {
				file, err := header.Open()
				if err != nil {
					RespondError(c, apperr.Wrap(apperr.KindValidation, "failed to open uploaded file", err))
					return
				}
				upload, err := readUpload(file, header)
				if err != nil {
					RespondError(c, err)
					return
				}
				in.Photos = append(in.Photos, *upload)
			}
		}
	}

	row, err := h.requests.Fulfill(c.Request.Context(), id, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *RequestHandler) Reopen(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	row, err := h.requests.Reopen(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *RequestHandler) RemovePhoto(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var body struct {
		Photo string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Photo) == "" {
		RespondError(c, apperr.E(apperr.KindValidation, "photo name is required"))
		return
	}
	row, err := h.requests.RemovePhoto(c.Request.Context(), id, body.Photo)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.requests.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": strconv.FormatUint(uint64(id), 10)})
}
