// Package handlers implements the HTTP endpoints of the bot: the Telegram
// webhook, the housekeeping trigger, diagnostics, and liveness.
//
// Error responses carry one of the codes below so callers can branch on a
// stable value instead of the message text. Middleware answers with
// "unauthorized" (webhook secret) and "rate_limited" in the same envelope.
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "route not found"
//	}
package handlers

const (
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
)
