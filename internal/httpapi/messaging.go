package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"msgdesk/internal/conversation"
	"msgdesk/internal/message"
)

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}

// --- Conversations ---

func (h Handlers) ListConversations(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	req := conversation.ListRequest{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Cursor: c.Query("cursor"),
		Limit:  queryLimit(c),
	}
	if v := c.Query("assignee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "assignee_id must be a positive integer")
			return
		}
		req.Assignee = &id
	}
	page, err := h.Conversations.List(c.Request.Context(), companyID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

func (h Handlers) GetConversation(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cv, err := h.Conversations.Get(c.Request.Context(), companyID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cv)
}

func (h Handlers) MarkConversationRead(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Conversations.MarkRead(c.Request.Context(), companyID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func (h Handlers) ArchiveConversation(c *gin.Context) {
	h.setConversationStatus(c, true)
}

func (h Handlers) UnarchiveConversation(c *gin.Context) {
	h.setConversationStatus(c, false)
}

func (h Handlers) setConversationStatus(c *gin.Context, archive bool) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var err error
	if archive {
		err = h.Conversations.Archive(c.Request.Context(), companyID, userID, id)
	} else {
		err = h.Conversations.Unarchive(c.Request.Context(), companyID, userID, id)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

type assignRequest struct {
	UserID *int64 `json:"user_id"`
}

func (h Handlers) AssignConversation(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Conversations.Assign(c.Request.Context(), companyID, userID, id, req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func (h Handlers) DeleteConversation(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Conversations.Delete(c.Request.Context(), companyID, userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func (h Handlers) ClearConversation(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Messages.Clear(c.Request.Context(), companyID, userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// --- Messages ---

func (h Handlers) ListMessages(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.Messages.List(c.Request.Context(), companyID, id, message.ListRequest{
		Cursor: c.Query("cursor"),
		Limit:  queryLimit(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

type sendMessageRequest struct {
	Phone   string          `json:"phone"`
	Content message.Content `json:"content"`
}

func (h Handlers) SendMessage(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondCoded(c, http.StatusBadRequest, message.CodeValidationError, "invalid json")
		return
	}
	res := h.Messages.Send(c.Request.Context(), companyID, userID, message.SendRequest{
		Phone:   req.Phone,
		Content: req.Content,
	})
	if !res.Success {
		respondCoded(c, sendStatus(res.Code), res.Code, res.Error)
		return
	}
	respondOK(c, http.StatusCreated, res)
}

func (h Handlers) RetryMessage(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.Messages.Retry(c.Request.Context(), companyID, userID, id)
	if !res.Success {
		respondCoded(c, sendStatus(res.Code), res.Code, res.Error)
		return
	}
	respondOK(c, http.StatusCreated, res)
}

func (h Handlers) GetMessage(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.Messages.Get(c.Request.Context(), companyID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, m)
}
