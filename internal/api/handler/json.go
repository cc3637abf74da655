package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bankdesk/internal/engine"
)

type countRequest struct {
	Count *int `json:"count"`
}

type beginEditRequest struct {
	Kind string `json:"kind" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

type updateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (h *Handler) jsonError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("API request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func (h *Handler) jsonOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// requestedCount reads the count from the JSON body or the count query
// parameter, falling back to the configured default.
func (h *Handler) requestedCount(c *gin.Context) (int, error) {
	if c.Request.ContentLength > 0 {
		var req countRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return 0, err
		}
		if req.Count != nil {
			return *req.Count, nil
		}
	}
	return parseCount(c.Query("count"), h.addCount)
}

// GetState returns the session state as JSON.
func (h *Handler) GetState(c *gin.Context) {
	state, err := h.engine.View(c.Request.Context(), sessionID(c))
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   state,
	})
}

// APIAddUsers appends users.
func (h *Handler) APIAddUsers(c *gin.Context) {
	count, err := h.requestedCount(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if err := h.engine.AddUsers(c.Request.Context(), sessionID(c), count); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Users added")
}

// APIAddBanks appends banks.
func (h *Handler) APIAddBanks(c *gin.Context) {
	count, err := h.requestedCount(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if err := h.engine.AddBanks(c.Request.Context(), sessionID(c), count); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Banks added")
}

// APIDeleteUser removes a user.
func (h *Handler) APIDeleteUser(c *gin.Context) {
	if err := h.engine.DeleteUser(c.Request.Context(), sessionID(c), engine.ID(c.Param("id"))); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "User deleted")
}

// APIDeleteBank removes a bank, answering 409 if users still reference it.
func (h *Handler) APIDeleteBank(c *gin.Context) {
	if err := h.engine.DeleteBank(c.Request.Context(), sessionID(c), engine.ID(c.Param("id"))); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Bank deleted")
}

// APIBeginEdit stages a user or bank for editing.
func (h *Handler) APIBeginEdit(c *gin.Context) {
	var req beginEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	kind, err := engine.ParseKind(req.Kind)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	if err := h.engine.BeginEdit(c.Request.Context(), sessionID(c), kind, engine.ID(req.ID)); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Editing "+req.Kind+" "+req.ID)
}

// APIUpdateEditField changes one field of the draft.
func (h *Handler) APIUpdateEditField(c *gin.Context) {
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if err := h.engine.UpdateEditField(c.Request.Context(), sessionID(c), req.Field, req.Value); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Field updated")
}

// APICommitEdit writes the draft back.
func (h *Handler) APICommitEdit(c *gin.Context) {
	if err := h.engine.CommitEdit(c.Request.Context(), sessionID(c)); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Edit committed")
}

// APICancelEdit discards the draft.
func (h *Handler) APICancelEdit(c *gin.Context) {
	if err := h.engine.CancelEdit(c.Request.Context(), sessionID(c)); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Edit cancelled")
}

// APIReset seeds the session with fresh data.
func (h *Handler) APIReset(c *gin.Context) {
	if err := h.engine.Reset(c.Request.Context(), sessionID(c)); err != nil {
		h.jsonError(c, err)
		return
	}
	h.jsonOK(c, "Session reset")
}
