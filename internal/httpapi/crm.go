package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"msgdesk/internal/contact"
	"msgdesk/internal/note"
	"msgdesk/internal/order"
)

// --- Contacts ---

func (h Handlers) ListContacts(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	page, err := h.Contacts.List(c.Request.Context(), companyID, contact.ListRequest{
		Search: c.Query("search"),
		Cursor: c.Query("cursor"),
		Limit:  queryLimit(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

func (h Handlers) GetContact(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ct, err := h.Contacts.Get(c.Request.Context(), companyID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ct)
}

type createContactRequest struct {
	Phone       string   `json:"phone"`
	DisplayName string   `json:"display_name"`
	Tags        []string `json:"tags"`
}

func (h Handlers) CreateContact(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ct, err := h.Contacts.Resolve(c.Request.Context(), companyID, req.Phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if req.DisplayName != "" || len(req.Tags) > 0 {
		upd := contact.UpdateRequest{Tags: req.Tags}
		if req.DisplayName != "" {
			upd.DisplayName = &req.DisplayName
		}
		if ct, err = h.Contacts.Update(c.Request.Context(), companyID, ct.ID, upd); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	respondOK(c, http.StatusCreated, ct)
}

func (h Handlers) UpdateContact(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req contact.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ct, err := h.Contacts.Update(c.Request.Context(), companyID, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ct)
}

// --- Notes ---

func (h Handlers) ListContactNotes(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.Notes.List(c.Request.Context(), companyID, id, note.ListRequest{
		Cursor: c.Query("cursor"),
		Limit:  queryLimit(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

type noteBodyRequest struct {
	Body string `json:"body"`
}

func (h Handlers) CreateContactNote(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req noteBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	n, err := h.Notes.Create(c.Request.Context(), companyID, userID, id, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, n)
}

func (h Handlers) UpdateNote(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req noteBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	n, err := h.Notes.Update(c.Request.Context(), companyID, userID, id, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, n)
}

func (h Handlers) DeleteNote(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Notes.Delete(c.Request.Context(), companyID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// --- Orders ---

func (h Handlers) ListOrders(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	req := order.ListRequest{
		Status: c.Query("status"),
		Cursor: c.Query("cursor"),
		Limit:  queryLimit(c),
	}
	if v := c.Query("contact_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "contact_id must be a positive integer")
			return
		}
		req.ContactID = id
	}
	page, err := h.Orders.List(c.Request.Context(), companyID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

func (h Handlers) CreateOrder(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	var req order.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.Orders.Create(c.Request.Context(), companyID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, o)
}

func (h Handlers) GetOrder(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.Orders.Get(c.Request.Context(), companyID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, o)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) SetOrderStatus(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.Orders.SetStatus(c.Request.Context(), companyID, id, order.Status(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, o)
}

func (h Handlers) DeleteOrder(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Orders.Delete(c.Request.Context(), companyID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
