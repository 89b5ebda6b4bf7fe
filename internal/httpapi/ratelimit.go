package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"msgdesk/internal/auth"
	"msgdesk/pkg/logger"
	"msgdesk/pkg/utils"
)

// SendCap caps concurrent outbound sends per company so one tenant cannot
// exhaust the provider quota of the whole deployment. The slot is held for
// the duration of the request and released on the way out.
//
// A nil client disables the cap (local development without Redis).
func SendCap(rdb *redis.Client, limit int, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		companyID, err := auth.CompanyID(ctx)
		if err != nil || companyID <= 0 {
			respondError(c, http.StatusUnauthorized, "company identity required")
			return
		}

		key := utils.SendCapKey(companyID)
		ok, err := utils.AcquireConcurrencyCap(ctx, rdb, key, limit, ttl)
		if err != nil {
			// Redis being down must not take sends with it.
			logger.From(ctx).Warn("send cap acquire failed", "company_id", companyID, "err", err)
			c.Next()
			return
		}
		if !ok {
			respondError(c, http.StatusTooManyRequests, "too many concurrent sends")
			return
		}
		defer func() {
			if err := utils.ReleaseConcurrencyCap(ctx, rdb, key); err != nil {
				logger.From(ctx).Warn("send cap release failed", "company_id", companyID, "err", err)
			}
		}()

		c.Next()
	}
}
