package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Reminders godoc
//
// @ID          dispatchReminders
// @Summary     Trigger the renewal reminder sweep
// @Description Starts the premium renewal reminder sweep in the background and returns immediately.
// @Tags        Housekeeping
// @Produce     plain
// @Success     200  {string}  string  "OK"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Router      /internal/housekeeping/reminders [post]
func (h *Handlers) Reminders(c *gin.Context) {
	go h.dispatchReminders()
	c.String(http.StatusOK, "OK")
}

func (h *Handlers) dispatchReminders() {
	logger := log.With().Str("component", "housekeeping").Str("trigger", "http").Logger()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("reminder sweep panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(h.base, h.reminderTimeout)
	defer cancel()
	n, err := h.reminders.DispatchRenewalReminders(ctx)
	if err != nil {
		logger.Error().Err(err).Int("sent", n).Msg("reminder sweep failed")
		return
	}
	logger.Info().Int("sent", n).Msg("reminder sweep finished")
}
