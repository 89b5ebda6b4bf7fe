package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// MessagingSummaryRequest requests aggregated message metrics.
// Tenancy isolation: CompanyID is required.

type MessagingSummaryRequest struct {
	CompanyID      int64     `json:"company_id"`
	Range          TimeRange `json:"range"`
	ConversationID int64     `json:"conversation_id,omitempty"`
}

type MessagingSummary struct {
	CompanyID      int64 `json:"company_id"`
	ConversationID int64 `json:"conversation_id,omitempty"`

	TotalMessages    int `json:"total_messages"`
	OutboundMessages int `json:"outbound_messages"`
	InboundMessages  int `json:"inbound_messages"`

	SentMessages      int `json:"sent_messages"`
	FailedMessages    int `json:"failed_messages"`
	DeliveredMessages int `json:"delivered_messages"`
	ReadMessages      int `json:"read_messages"`

	// DeliveryRatePercent is delivered+read over settled outbound, rounded down.
	DeliveryRatePercent int `json:"delivery_rate_percent"`
}

// SalesSummaryRequest requests aggregated order metrics.

type SalesSummaryRequest struct {
	CompanyID int64     `json:"company_id"`
	Range     TimeRange `json:"range"`
	Currency  string    `json:"currency,omitempty"`
}

type SalesSummary struct {
	CompanyID int64  `json:"company_id"`
	Currency  string `json:"currency"`

	TotalOrders     int `json:"total_orders"`
	PendingOrders   int `json:"pending_orders"`
	PaidOrders      int `json:"paid_orders"`
	ShippedOrders   int `json:"shipped_orders"`
	CancelledOrders int `json:"cancelled_orders"`

	GrossMinor     int64 `json:"gross_minor"`
	PaidMinor      int64 `json:"paid_minor"`
	CancelledMinor int64 `json:"cancelled_minor"`
}
