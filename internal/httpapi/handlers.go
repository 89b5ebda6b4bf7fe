package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"msgdesk/internal/account"
	"msgdesk/internal/auth"
	"msgdesk/internal/contact"
	"msgdesk/internal/conversation"
	"msgdesk/internal/message"
	"msgdesk/internal/note"
	"msgdesk/internal/order"
	"msgdesk/internal/reporting"
	"msgdesk/internal/user"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return the
// envelope.

type Handlers struct {
	Users         *user.Service
	Contacts      *contact.Service
	Conversations *conversation.Service
	Messages      *message.Service
	Notes         *note.Service
	Orders        *order.Service
	Accounts      *account.Service
	Reports       *reporting.Service
}

// identity reads the authenticated company/user from the request context.
// The auth middleware guarantees presence on protected routes.
func identity(c *gin.Context) (companyID, userID int64, ok bool) {
	ctx := c.Request.Context()
	companyID, err := auth.CompanyID(ctx)
	if err != nil || companyID <= 0 {
		respondError(c, http.StatusUnauthorized, "company identity required")
		return 0, 0, false
	}
	userID, _ = auth.UserID(ctx)
	return companyID, userID, true
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, res)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		respondError(c, http.StatusBadRequest, "refresh_token required")
		return
	}
	pair, err := h.Users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pair)
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
