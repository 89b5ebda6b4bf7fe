package httpapi

import (
	"github.com/gin-gonic/gin"

	"msgdesk/internal/rbac"
	"msgdesk/internal/whatsapp"
)

// Register wires all routes. authMW must authenticate and install the
// identity into the request context; sendCap may be nil.
//
// Roles: agents work conversations, analysts read reports, owners manage
// users and accounts. super_admin passes every check.
func Register(r *gin.Engine, h Handlers, authMW gin.HandlerFunc, sendCap gin.HandlerFunc, webhook *whatsapp.WebhookHandler) {
	// public
	r.GET("/healthz", h.Health)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	if webhook != nil {
		r.GET("/webhooks/whatsapp", webhook.HandleVerify)
		r.POST("/webhooks/whatsapp", webhook.HandleEvent)
	}

	v1 := r.Group("/v1")
	v1.Use(authMW, rbac.RequireCompany())

	agents := rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent)
	readers := rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent, rbac.RoleAnalyst)
	owners := rbac.RequireAnyRole(rbac.RoleOwner)

	conversations := v1.Group("/conversations")
	{
		conversations.GET("", readers, h.ListConversations)
		conversations.GET("/:id", readers, h.GetConversation)
		conversations.GET("/:id/messages", readers, h.ListMessages)
		conversations.POST("/:id/read", agents, h.MarkConversationRead)
		conversations.POST("/:id/archive", agents, h.ArchiveConversation)
		conversations.POST("/:id/unarchive", agents, h.UnarchiveConversation)
		conversations.POST("/:id/assign", agents, h.AssignConversation)
		conversations.POST("/:id/clear", agents, h.ClearConversation)
		conversations.DELETE("/:id", agents, h.DeleteConversation)
	}

	messages := v1.Group("/messages")
	{
		send := []gin.HandlerFunc{agents}
		if sendCap != nil {
			send = append(send, sendCap)
		}
		messages.POST("", append(send, h.SendMessage)...)
		messages.POST("/:id/retry", append(send, h.RetryMessage)...)
		messages.GET("/:id", readers, h.GetMessage)
	}

	contacts := v1.Group("/contacts")
	{
		contacts.GET("", readers, h.ListContacts)
		contacts.POST("", agents, h.CreateContact)
		contacts.GET("/:id", readers, h.GetContact)
		contacts.PATCH("/:id", agents, h.UpdateContact)
		contacts.GET("/:id/notes", readers, h.ListContactNotes)
		contacts.POST("/:id/notes", agents, h.CreateContactNote)
	}

	notes := v1.Group("/notes")
	{
		notes.PATCH("/:id", agents, h.UpdateNote)
		notes.DELETE("/:id", agents, h.DeleteNote)
	}

	orders := v1.Group("/orders")
	{
		orders.GET("", readers, h.ListOrders)
		orders.POST("", agents, h.CreateOrder)
		orders.GET("/:id", readers, h.GetOrder)
		orders.POST("/:id/status", agents, h.SetOrderStatus)
		orders.DELETE("/:id", agents, h.DeleteOrder)
	}

	users := v1.Group("/users")
	{
		users.GET("", owners, h.ListUsers)
		users.POST("", owners, h.CreateUser)
		users.PATCH("/:id", owners, h.UpdateUser)
		users.DELETE("/:id", owners, h.DeleteUser)
	}

	accounts := v1.Group("/accounts")
	{
		accounts.GET("", owners, h.ListAccounts)
		accounts.POST("", owners, h.CreateAccount)
		accounts.PATCH("/:id", owners, h.UpdateAccount)
		accounts.DELETE("/:id", owners, h.DeleteAccount)
	}

	reports := v1.Group("/reports")
	{
		reports.GET("/messaging", readers, h.MessagingReport)
		reports.GET("/sales", readers, h.SalesReport)
	}
}
