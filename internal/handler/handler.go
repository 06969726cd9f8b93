package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shiikun-cn/tarot-mcp/internal/draw"
)

// threeCardRoles are the positional labels for a three-card spread,
// attached here rather than by the draw engine.
var threeCardRoles = []string{"past", "present", "future"}

type Handler struct {
	engine *draw.Engine
}

func NewHandler(engine *draw.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/session", h.newSession)
	r.POST("/draw_one", h.drawOne)
	r.POST("/draw_three", h.drawThree)
	r.POST("/reset_session", h.resetSession)
}

type drawRequest struct {
	SessionID        string `json:"session_id"`
	Session          string `json:"session"`
	ResetIfExhausted *bool  `json:"reset_if_exhausted"`
}

// parse reads the request body, tolerating an absent or malformed one, and
// resolves the session id from body or query string.
func parse(c *gin.Context) (sessionID string, resetIfExhausted bool) {
	var req drawRequest
	_ = c.ShouldBindJSON(&req)

	sessionID = req.SessionID
	if sessionID == "" {
		sessionID = req.Session
	}
	if sessionID == "" {
		sessionID = c.Query("session_id")
	}

	resetIfExhausted = true
	if req.ResetIfExhausted != nil {
		resetIfExhausted = *req.ResetIfExhausted
	}
	return sessionID, resetIfExhausted
}

func (h *Handler) newSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"session_id": uuid.NewString(),
	})
}

func (h *Handler) drawOne(c *gin.Context) {
	sessionID, resetIfExhausted := parse(c)
	if sessionID == "" {
		missingSession(c)
		return
	}

	cards, err := h.engine.Draw(c.Request.Context(), sessionID, 1, resetIfExhausted)
	if err != nil {
		drawError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"session_id": sessionID,
		"cards":      cards,
	})
}

type rolePick struct {
	draw.Pick
	Role string `json:"role"`
}

func (h *Handler) drawThree(c *gin.Context) {
	sessionID, resetIfExhausted := parse(c)
	if sessionID == "" {
		missingSession(c)
		return
	}

	picks, err := h.engine.Draw(c.Request.Context(), sessionID, 3, resetIfExhausted)
	if err != nil {
		drawError(c, err)
		return
	}

	cards := make([]rolePick, len(picks))
	for i, p := range picks {
		role := fmt.Sprintf("pos%d", i)
		if i < len(threeCardRoles) {
			role = threeCardRoles[i]
		}
		cards[i] = rolePick{Pick: p, Role: role}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"session_id": sessionID,
		"cards":      cards,
	})
}

func (h *Handler) resetSession(c *gin.Context) {
	sessionID, _ := parse(c)
	if sessionID == "" {
		missingSession(c)
		return
	}

	if err := h.engine.Reset(c.Request.Context(), sessionID); err != nil {
		drawError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"session_id": sessionID,
		"message":    "cleared",
	})
}

func missingSession(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":  http.StatusBadRequest,
		"error": "Missing session_id",
	})
}

func drawError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, draw.ErrNoDeckLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, draw.ErrInsufficientCards):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"code":  status,
		"error": err.Error(),
	})
}
