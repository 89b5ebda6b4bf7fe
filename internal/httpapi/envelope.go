package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"msgdesk/internal/account"
	"msgdesk/internal/contact"
	"msgdesk/internal/conversation"
	"msgdesk/internal/message"
	"msgdesk/internal/note"
	"msgdesk/internal/order"
	"msgdesk/internal/reporting"
	"msgdesk/internal/user"
)

// Every endpoint answers with the same envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "...", "code": "..."}
//
// code is present only when a taxonomy code applies (message sends).

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func respondCoded(c *gin.Context, status int, code message.ErrorCode, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "code": code})
}

// respondServiceError translates package sentinel errors into HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case isNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	case isInvalidArgument(err):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func isNotFound(err error) bool {
	for _, sentinel := range []error{
		contact.ErrNotFound, conversation.ErrNotFound, message.ErrNotFound,
		note.ErrNotFound, order.ErrNotFound, user.ErrNotFound, account.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isInvalidArgument(err error) bool {
	for _, sentinel := range []error{
		contact.ErrInvalidArgument, conversation.ErrInvalidArgument, message.ErrInvalidArgument,
		note.ErrInvalidArgument, order.ErrInvalidArgument, order.ErrInvalidTransition,
		user.ErrInvalidArgument, account.ErrInvalidArgument, reporting.ErrInvalidRequest,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// sendStatus maps a send taxonomy code to the HTTP status of the envelope.
func sendStatus(code message.ErrorCode) int {
	switch code {
	case message.CodeValidationError:
		return http.StatusBadRequest
	case message.CodeWhatsAppSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
