package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dmrelay/internal/logger"
	"dmrelay/internal/relay"
	"dmrelay/pkg/errors"
)

//go:embed static/index.html
var indexHTML []byte

// Relay is the part of relay.Service used by the HTTP handlers.
type Relay interface {
	Send(ctx context.Context, spec relay.TargetSpec, payload relay.Payload) (int, error)
	Broadcast(ctx context.Context, spec relay.TargetSpec, payload relay.Payload) (relay.Report, error)
	Report(id string) (relay.Report, bool)
	GroupNames(ctx context.Context) ([]string, error)
}

type BaseHandler struct {
	Relay  Relay
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.InfowCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

type Handler struct {
	BaseHandler
}

func NewHandler(r Relay, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Relay:  r,
			Logger: log,
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Index)
	router.POST("/send-dm", h.SendDM)
	router.GET("/get-roles", h.GetRoles)
	router.GET("/broadcasts/:id", h.GetBroadcast)
}

// Index serves the admin page.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// SendDM godoc
// @Summary      Send a direct message
// @Description  Sends a message to one user, to every member of a role, or to every member. Role and all sends are delivered in the background; poll the returned broadcast for the outcome.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request  body      SendRequest  true  "Target and message"
// @Success      200      {object}  SendResponse
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Failure      429      {object}  errors.ErrorResponse
// @Failure      502      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /send-dm [post]
func (h *Handler) SendDM(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	target, err := req.Target()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	payload, err := req.Payload()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	if target.Kind == relay.TargetSingle {
		if _, err := h.Relay.Send(ctx, target, payload); err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, SendResponse{Status: "Message sent to user", Recipients: 1})
		return
	}

	report, err := h.Relay.Broadcast(ctx, target, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	status := "Message is being sent to all members"
	if target.Kind == relay.TargetGroup {
		status = fmt.Sprintf("Message is being sent to everyone with role %s", target.Group)
	}
	c.JSON(http.StatusOK, SendResponse{
		Status:      status,
		Recipients:  report.Total,
		BroadcastID: report.ID,
	})
}

// GetRoles godoc
// @Summary      List role names
// @Description  Lists the guild's role names, excluding @everyone and integration-managed roles
// @Tags         roles
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /get-roles [get]
func (h *Handler) GetRoles(c *gin.Context) {
	names, err := h.Relay.GroupNames(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

// GetBroadcast godoc
// @Summary      Get a broadcast report
// @Description  Returns delivery counts for a role or all send
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Broadcast ID"
// @Success      200  {object}  relay.Report
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /broadcasts/{id} [get]
func (h *Handler) GetBroadcast(c *gin.Context) {
	id := c.Param("id")
	report, ok := h.Relay.Report(id)
	if !ok {
		h.HandleError(c, errors.ErrNotFound.WithMessage("broadcast not found").WithDetail("broadcast_id", id))
		return
	}
	c.JSON(http.StatusOK, report)
}
