package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"msgdesk/internal/account"
	"msgdesk/internal/audit"
	"msgdesk/internal/auth"
	"msgdesk/internal/config"
	"msgdesk/internal/contact"
	"msgdesk/internal/conversation"
	"msgdesk/internal/httpapi"
	"msgdesk/internal/message"
	"msgdesk/internal/note"
	"msgdesk/internal/order"
	"msgdesk/internal/reporting"
	"msgdesk/internal/user"
	"msgdesk/internal/whatsapp"
	"msgdesk/pkg/logger"
)

// buildRouter assembles repositories, services, and routes.
// Keep this file free of business logic; handlers delegate to internal
// packages.
func buildRouter(cfg config.Config, log *slog.Logger, db *sql.DB, rdb *redis.Client, tokens *auth.Manager) *gin.Engine {
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	contactSvc := contact.NewService(contact.NewPostgresRepo(db))
	convSvc := conversation.NewService(conversation.NewPostgresRepo(db), auditSvc)
	acctSvc := account.NewService(account.NewPostgresRepo(db))
	noteSvc := note.NewService(note.NewPostgresRepo(db), contactSvc)
	orderSvc := order.NewService(order.NewPostgresRepo(db), contactSvc)
	userSvc := user.NewService(user.NewPostgresRepo(db), tokens, auditSvc)
	reportSvc := reporting.NewService(reporting.NewPostgresRepo(db))

	sender := whatsapp.NewClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.APIVersion)
	msgSvc := message.NewService(
		message.NewPostgresRepo(db),
		contactSvc, convSvc, acctSvc,
		sender, auditSvc,
		whatsapp.RetryConfig{
			MaxAttempts: cfg.WhatsApp.SendMaxAttempts,
			BaseDelay:   cfg.WhatsApp.SendBaseDelay,
		},
	)

	h := httpapi.Handlers{
		Users:         userSvc,
		Contacts:      contactSvc,
		Conversations: convSvc,
		Messages:      msgSvc,
		Notes:         noteSvc,
		Orders:        orderSvc,
		Accounts:      acctSvc,
		Reports:       reportSvc,
	}

	webhook := &whatsapp.WebhookHandler{
		VerifyToken: cfg.WhatsApp.WebhookVerifyToken,
		CompanyResolver: func(ctx context.Context, phoneNumberID string) (int64, error) {
			acct, err := acctSvc.ResolveWebhook(ctx, phoneNumberID)
			if err != nil {
				return 0, err
			}
			return acct.CompanyID, nil
		},
		Processor: msgSvc,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	// TTL outlives the slowest send path (3 provider attempts plus backoff)
	// so crashed processes cannot leak slots forever.
	sendCap := httpapi.SendCap(rdb, cfg.WhatsApp.SendConcurrency, 2*time.Minute)
	httpapi.Register(r, h, auth.RequireAccessToken(tokens), sendCap, webhook)
	return r
}
