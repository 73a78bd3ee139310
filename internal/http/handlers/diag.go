package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root answers the bare liveness probe.
func (h *Handlers) Root(c *gin.Context) { c.String(http.StatusOK, "ok") }

// Health godoc
//
// @ID       health
// @Summary  Liveness probe
// @Tags     Diagnostics
// @Produce  plain
// @Success  200  {string}  string  "OK"
// @Router   /health [get]
func (h *Handlers) Health(c *gin.Context) { c.String(http.StatusOK, "OK") }

// EchoResponse summarizes the effective transport settings.
type EchoResponse struct {
	Transport  string `json:"transport" example:"WEBHOOK"`
	ParseMode  string `json:"parse_mode" example:"NONE"`
	WebhookURL string `json:"webhook_url"`
	OffsetFile string `json:"offset_file"`
	DBDriver   string `json:"db_driver" example:"sqlite"`
}

// VarsResponse extends EchoResponse with polling and environment details.
type VarsResponse struct {
	EchoResponse
	PollIntervalMS int64  `json:"poll_interval_ms" example:"800"`
	PollTimeoutSec int    `json:"poll_timeout_sec" example:"40"`
	AppEnv         string `json:"app_env" example:"DEV"`
}

func (h *Handlers) echo() EchoResponse {
	tg := h.cfg.Telegram
	return EchoResponse{
		Transport:  string(tg.Transport),
		ParseMode:  string(tg.ParseMode),
		WebhookURL: tg.WebhookURL,
		OffsetFile: tg.OffsetFile,
		DBDriver:   h.cfg.Database.Driver,
	}
}

// Echo godoc
//
// @ID       diagEcho
// @Summary  Effective transport settings
// @Tags     Diagnostics
// @Produce  json
// @Success  200  {object}  handlers.EchoResponse
// @Router   /diag/echo [get]
func (h *Handlers) Echo(c *gin.Context) {
	ok(c, http.StatusOK, h.echo())
}

// Vars godoc
//
// @ID       diagVars
// @Summary  Extended settings (development only)
// @Tags     Diagnostics
// @Produce  json
// @Success  200  {object}  handlers.VarsResponse
// @Router   /diag/vars [get]
func (h *Handlers) Vars(c *gin.Context) {
	ok(c, http.StatusOK, VarsResponse{
		EchoResponse:   h.echo(),
		PollIntervalMS: h.cfg.Telegram.PollInterval.Milliseconds(),
		PollTimeoutSec: h.cfg.Telegram.PollTimeoutSec,
		AppEnv:         h.cfg.AppEnv,
	})
}
