package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"msgdesk/internal/account"
	"msgdesk/internal/reporting"
	"msgdesk/internal/user"
)

// --- Users ---

func (h Handlers) ListUsers(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	page, err := h.Users.List(c.Request.Context(), companyID, user.ListRequest{
		Cursor: c.Query("cursor"),
		Limit:  queryLimit(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

func (h Handlers) CreateUser(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	var req user.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.Users.Create(c.Request.Context(), companyID, req)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, u)
}

func (h Handlers) UpdateUser(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req user.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.Users.Update(c.Request.Context(), companyID, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, u)
}

func (h Handlers) DeleteUser(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), companyID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// --- WhatsApp accounts ---

func (h Handlers) ListAccounts(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	accounts, err := h.Accounts.List(c.Request.Context(), companyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, accounts)
}

func (h Handlers) CreateAccount(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	var req account.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	acct, err := h.Accounts.Create(c.Request.Context(), companyID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, acct)
}

func (h Handlers) UpdateAccount(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req account.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	acct, err := h.Accounts.Update(c.Request.Context(), companyID, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, acct)
}

func (h Handlers) DeleteAccount(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Accounts.Delete(c.Request.Context(), companyID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// --- Reports ---

func queryTimeRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "from must be RFC3339")
		return reporting.TimeRange{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "to must be RFC3339")
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}

func (h Handlers) MessagingReport(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	rng, ok := queryTimeRange(c)
	if !ok {
		return
	}
	req := reporting.MessagingSummaryRequest{CompanyID: companyID, Range: rng}
	if v := c.Query("conversation_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "conversation_id must be a positive integer")
			return
		}
		req.ConversationID = id
	}
	sum, err := h.Reports.MessagingSummary(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, sum)
}

func (h Handlers) SalesReport(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	rng, ok := queryTimeRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.SalesSummary(c.Request.Context(), reporting.SalesSummaryRequest{
		CompanyID: companyID,
		Range:     rng,
		Currency:  c.Query("currency"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, sum)
}
