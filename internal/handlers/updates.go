package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusQueued = "queued"

	errEnqueueFailed   = "failed to enqueue update"
	errListFailed      = "failed to load outcomes"
	errOutcomeNotFound = "outcome not found"
	errFromInvalid     = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid       = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errSuccessInvalid  = "invalid 'success' flag; use true or false"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for enqueueing an update.
type updateRequestBody struct {
	Item        string `json:"item" binding:"required"`
	Value       string `json:"value"` // may be "TOGGLE"; empty string is a valid command
	Label       string `json:"label,omitempty"`
	MappedValue string `json:"mapped_value,omitempty"`
	ShowToast   bool   `json:"show_toast,omitempty"`
}

// EnqueueUpdateRequest is an exported model for Swagger docs of the enqueue payload.
type EnqueueUpdateRequest struct {
	// Item name on the remote server
	Item string `json:"item" example:"LivingroomLight"`
	// Value to send; "TOGGLE" computes the opposite of the current state
	Value string `json:"value" example:"TOGGLE"`
	// Display label used in notification messages
	Label string `json:"label,omitempty" example:"Living room light"`
	// Mapped value shown in the generic notification template
	MappedValue string `json:"mapped_value,omitempty" example:"50 %"`
	// Whether to emit a user-visible notice for this update
	ShowToast bool `json:"show_toast,omitempty" example:"true"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// @Summary      Enqueue item update
// @Description  Queues a state update for an item. "TOGGLE" resolves against the item's current state.
// @Tags         updates
// @Accept       json
// @Produce      json
// @Param        body  body   EnqueueUpdateRequest  true  "Update payload"
// @Success      202   {object}  map[string]string  "status, id"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/updates [post]
// @Security     BearerAuth
func (h *Handler) enqueueUpdate(c *gin.Context) {
	var req updateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Dispatcher.Enqueue(ctx, updater.UpdateRequest{
		ItemName:    strings.TrimSpace(req.Item),
		Label:       req.Label,
		Value:       req.Value,
		MappedValue: req.MappedValue,
		ShowToast:   req.ShowToast,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errEnqueueFailed, "update_enqueue_failed", err, "item", req.Item)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusQueued, "id": id})
}

// @Summary      List update outcomes
// @Description  Filter outcomes by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), item name and success flag. If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         updates
// @Produce      json
// @Param        from     query  string  false  "Start of range"  example(2025-08-01)
// @Param        to       query  string  false  "End of range; date-only treated as end of day"  example(2025-08-31)
// @Param        item     query  string  false  "Item name"
// @Param        success  query  bool    false  "Only successes (true) or only failures (false)"
// @Success      200  {object}  map[string]interface{}  "count, outcomes"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/updates [get]
// @Security     BearerAuth
func (h *Handler) listOutcomes(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		// If the user didn't include a time component, treat "to" as the end of that day.
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	var success *bool
	if qs := c.Query("success"); qs != "" {
		v, err := strconv.ParseBool(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSuccessInvalid})
			return
		}
		success = &v
	}

	outcomes, err := h.services.History.List(ctx, service.HistoryFilter{
		From:    from,
		To:      to,
		Item:    strings.TrimSpace(c.Query("item")),
		Success: success,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListFailed, "outcomes_list_failed", err, "from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(outcomes),
		"outcomes": outcomes,
	})
}

// @Summary      Get one update outcome
// @Tags         updates
// @Produce      json
// @Param        id  path  string  true  "Outcome id (same as queue id)"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/updates/{id} [get]
// @Security     BearerAuth
func (h *Handler) getOutcome(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	outcome, err := h.services.History.Get(ctx, id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListFailed, "outcome_get_failed", err, "id", id)
		return
	}
	if outcome == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errOutcomeNotFound})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
