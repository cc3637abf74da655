package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bankdesk/internal/api/models"
	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/jon4hz/bankdesk/internal/gravatar"
	"github.com/jon4hz/bankdesk/web/templates/pages"
)

// SessionIDKey is the key of the session id, both in the cookie session and
// in the gin context.
const SessionIDKey = "session_id"

type Handler struct {
	engine   *engine.Engine
	avatars  *gravatar.Avatars
	addCount int
	log      *log.Logger
}

func New(eng *engine.Engine, cfg *config.Config) *Handler {
	addCount := 1
	if cfg != nil && cfg.DataSource != nil && cfg.DataSource.AddCount > 0 {
		addCount = cfg.DataSource.AddCount
	}
	var avatars *gravatar.Options
	if cfg != nil {
		avatars = cfg.Gravatar.Options()
	}
	return &Handler{
		engine:   eng,
		avatars:  gravatar.New(avatars),
		addCount: addCount,
		log:      log.Default().WithPrefix("api"),
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrBankInUse):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidCount),
		errors.Is(err, engine.ErrUnknownField),
		errors.Is(err, engine.ErrUnknownKind),
		errors.Is(err, engine.ErrUnknownBank),
		errors.Is(err, engine.ErrNotEditing):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseCount parses a requested record count. An empty value yields def.
func parseCount(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", engine.ErrInvalidCount, raw)
	}
	count, err := safecast.Convert[int](n)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", engine.ErrInvalidCount, raw)
	}
	return count, nil
}

// Home renders the dashboard of the current session.
func (h *Handler) Home(c *gin.Context) {
	state, err := h.engine.View(c.Request.Context(), sessionID(c))
	if err != nil {
		h.log.Error("Failed to load session", "error", err)
		c.String(http.StatusInternalServerError, "failed to load session")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	d := models.ToDashboard(state, h.avatars, h.addCount)
	if err := pages.Index(d).Render(c.Request.Context(), c.Writer); err != nil {
		h.log.Error("Failed to render dashboard", "error", err)
	}
}

// redirectHome ends a form post. Errors the engine already reported to the
// session as a notice, or that only concern the request, still redirect.
func (h *Handler) redirectHome(c *gin.Context, action string, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Failed to "+action, "error", err)
			c.String(status, "failed to %s", action)
			return
		}
		h.log.Debug("Rejected "+action, "status", status, "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// AddUsers appends users from the form's count field.
func (h *Handler) AddUsers(c *gin.Context) {
	count, err := parseCount(c.PostForm("count"), h.addCount)
	if err == nil {
		err = h.engine.AddUsers(c.Request.Context(), sessionID(c), count)
	} else {
		err = h.engine.Reject(c.Request.Context(), sessionID(c), err)
	}
	h.redirectHome(c, "add users", err)
}

// AddBanks appends banks from the form's count field.
func (h *Handler) AddBanks(c *gin.Context) {
	count, err := parseCount(c.PostForm("count"), h.addCount)
	if err == nil {
		err = h.engine.AddBanks(c.Request.Context(), sessionID(c), count)
	} else {
		err = h.engine.Reject(c.Request.Context(), sessionID(c), err)
	}
	h.redirectHome(c, "add banks", err)
}

// EditUser opens the edit form for a user.
func (h *Handler) EditUser(c *gin.Context) {
	err := h.engine.BeginEdit(c.Request.Context(), sessionID(c), engine.KindUser, engine.ID(c.Param("id")))
	h.redirectHome(c, "edit user", err)
}

// EditBank opens the edit form for a bank.
func (h *Handler) EditBank(c *gin.Context) {
	err := h.engine.BeginEdit(c.Request.Context(), sessionID(c), engine.KindBank, engine.ID(c.Param("id")))
	h.redirectHome(c, "edit bank", err)
}

// SaveEdit applies every posted field to the draft and commits it.
func (h *Handler) SaveEdit(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		err = h.engine.Reject(c.Request.Context(), sessionID(c), fmt.Errorf("%w: %w", engine.ErrUnknownField, err))
		h.redirectHome(c, "save edit", err)
		return
	}
	fields := make(map[string]string, len(c.Request.PostForm))
	for name, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}
	err := h.engine.SaveEdit(c.Request.Context(), sessionID(c), fields)
	h.redirectHome(c, "save edit", err)
}

// CancelEdit closes the edit form without saving.
func (h *Handler) CancelEdit(c *gin.Context) {
	err := h.engine.CancelEdit(c.Request.Context(), sessionID(c))
	h.redirectHome(c, "cancel edit", err)
}

// DeleteUser removes a user.
func (h *Handler) DeleteUser(c *gin.Context) {
	err := h.engine.DeleteUser(c.Request.Context(), sessionID(c), engine.ID(c.Param("id")))
	h.redirectHome(c, "delete user", err)
}

// DeleteBank removes a bank. A rejected delete shows up as a notice.
func (h *Handler) DeleteBank(c *gin.Context) {
	err := h.engine.DeleteBank(c.Request.Context(), sessionID(c), engine.ID(c.Param("id")))
	h.redirectHome(c, "delete bank", err)
}

// Reset seeds the session with fresh data.
func (h *Handler) Reset(c *gin.Context) {
	err := h.engine.Reset(c.Request.Context(), sessionID(c))
	h.redirectHome(c, "reset session", err)
}

// EndSession drops the session state and its cookie.
func (h *Handler) EndSession(c *gin.Context) {
	if err := h.engine.EndSession(c.Request.Context(), sessionID(c)); err != nil {
		h.redirectHome(c, "end session", err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		if err := c.AbortWithError(http.StatusInternalServerError, err); err != nil {
			h.log.Error("Failed to abort with error", "error", err)
		}
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
