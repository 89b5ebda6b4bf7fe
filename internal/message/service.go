package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"msgdesk/internal/account"
	"msgdesk/internal/audit"
	"msgdesk/internal/contact"
	"msgdesk/internal/conversation"
	"msgdesk/internal/pagination"
	"msgdesk/internal/whatsapp"
	"msgdesk/pkg/logger"
)

// Repository abstracts message persistence.
//
// MarkSent and InsertInbound pair the message write with the conversation
// summary update in one transaction, so a message row never exists while
// the conversation still shows the previous last-message fields.
type Repository interface {
	Insert(ctx context.Context, m Message) (Message, error)
	GetByID(ctx context.Context, companyID, id int64) (Message, bool, error)
	FindByProviderID(ctx context.Context, companyID int64, providerID string) (Message, bool, error)

	MarkSent(ctx context.Context, companyID, conversationID, id int64, providerID, preview string, at time.Time) error
	MarkFailed(ctx context.Context, companyID, id int64, errCode, errMsg string, at time.Time) error

	InsertInbound(ctx context.Context, m Message, preview string) (Message, error)
	SetReceiptStatus(ctx context.Context, companyID int64, providerID string, status Status, at time.Time) error

	// ListByConversation fetches up to limit+1 non-deleted messages ordered
	// by (created_at DESC, id DESC), starting strictly after cur.
	ListByConversation(ctx context.Context, companyID, conversationID int64, cur *pagination.Cursor, limit int) ([]Message, error)
	ClearConversation(ctx context.Context, companyID, conversationID int64, at time.Time) error
}

// Contacts is the slice of the contact service the pipeline needs.
type Contacts interface {
	Resolve(ctx context.Context, companyID int64, phone string) (contact.Contact, error)
	Get(ctx context.Context, companyID, id int64) (contact.Contact, error)
	Update(ctx context.Context, companyID, id int64, req contact.UpdateRequest) (contact.Contact, error)
}

// Conversations is the slice of the conversation service the pipeline needs.
type Conversations interface {
	Resolve(ctx context.Context, companyID, contactID int64) (conversation.Conversation, error)
	Get(ctx context.Context, companyID, id int64) (conversation.Conversation, error)
}

// Accounts resolves the sending configuration for a company.
type Accounts interface {
	ResolveSending(ctx context.Context, companyID int64) (account.Account, error)
}

var (
	ErrNotFound        = errors.New("message not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Service struct {
	repo          Repository
	contacts      Contacts
	conversations Conversations
	accounts      Accounts
	sender        whatsapp.Sender
	audit         *audit.Service
	retry         whatsapp.RetryConfig
	clock         func() time.Time
}

func NewService(
	repo Repository,
	contacts Contacts,
	conversations Conversations,
	accounts Accounts,
	sender whatsapp.Sender,
	auditSvc *audit.Service,
	retry whatsapp.RetryConfig,
) *Service {
	return &Service{
		repo:          repo,
		contacts:      contacts,
		conversations: conversations,
		accounts:      accounts,
		sender:        sender,
		audit:         auditSvc,
		retry:         retry,
		clock:         time.Now,
	}
}

type SendRequest struct {
	Phone   string  `json:"phone"`
	Content Content `json:"content"`
}

// Send runs the outbound pipeline: resolve contact, resolve conversation,
// insert the message in sending state, resolve credentials, deliver via the
// provider with retries, then settle the message to sent or failed. The
// settle step runs on every path: the database never shows a permanently
// "sending" message without an explanation.
//
// Send never returns a Go error; every failure mode maps to a SendResult
// carrying a taxonomy code.
func (s *Service) Send(ctx context.Context, companyID, actorUserID int64, req SendRequest) SendResult {
	res := s.send(ctx, companyID, actorUserID, req)
	if !res.Success {
		logger.From(ctx).Warn("send failed",
			"company_id", companyID,
			"code", res.Code,
			"message_id", res.MessageID,
			"error", res.Error,
		)
	}
	return res
}

func (s *Service) send(ctx context.Context, companyID, actorUserID int64, req SendRequest) SendResult {
	req.Phone = strings.TrimSpace(req.Phone)
	if companyID <= 0 {
		return failResult(CodeValidationError, "company id required")
	}
	if !contact.ValidPhone(req.Phone) {
		return failResult(CodeValidationError, "invalid phone number")
	}
	if err := req.Content.Validate(); err != nil {
		return failResult(CodeValidationError, err.Error())
	}

	ct, err := s.contacts.Resolve(ctx, companyID, req.Phone)
	if err != nil {
		if errors.Is(err, contact.ErrInvalidArgument) {
			return failResult(CodeValidationError, err.Error())
		}
		return failResult(CodeContactCreateFailed, err.Error())
	}

	cv, err := s.conversations.Resolve(ctx, companyID, ct.ID)
	if err != nil {
		return failResult(CodeConversationCreateFailed, err.Error())
	}

	now := s.clock().UTC()
	m, err := s.repo.Insert(ctx, Message{
		CompanyID:      companyID,
		ConversationID: cv.ID,
		ContactID:      ct.ID,
		Direction:      DirectionOutbound,
		Status:         StatusSending,
		Content:        req.Content,
		State:          StateActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return failResult(CodeMessageInsertFailed, err.Error())
	}

	acct, err := s.accounts.ResolveSending(ctx, companyID)
	if err != nil {
		// Terminal for this attempt: settle the already-inserted row first.
		reason := "no active whatsapp account configured"
		if !errors.Is(err, account.ErrNoActiveAccount) {
			reason = err.Error()
		}
		s.markFailed(ctx, companyID, m.ID, CodeWhatsAppSendFailed, reason)
		s.logSendFailed(ctx, companyID, actorUserID, cv.ID, m.ID, CodeWhatsAppSendFailed, reason)
		return SendResult{
			ConversationID: cv.ID,
			ContactID:      ct.ID,
			MessageID:      m.ID,
			Error:          reason,
			Code:           CodeWhatsAppSendFailed,
		}
	}

	creds := whatsapp.Credentials{PhoneNumberID: acct.PhoneNumberID, AccessToken: acct.AccessToken}
	out := toOutbound(ct.Phone, req.Content)

	providerID, sendErr := whatsapp.CallWithRetry(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.sender.Send(ctx, creds, out)
	})

	if sendErr != nil {
		reason := sendErr.Error()
		var apiErr *whatsapp.APIError
		if errors.As(sendErr, &apiErr) {
			reason = apiErr.Message
		}
		s.markFailed(ctx, companyID, m.ID, CodeWhatsAppSendFailed, reason)
		s.logSendFailed(ctx, companyID, actorUserID, cv.ID, m.ID, CodeWhatsAppSendFailed, reason)
		return SendResult{
			ConversationID: cv.ID,
			ContactID:      ct.ID,
			MessageID:      m.ID,
			Error:          reason,
			Code:           CodeWhatsAppSendFailed,
		}
	}

	settledAt := s.clock().UTC()
	if err := s.repo.MarkSent(ctx, companyID, cv.ID, m.ID, providerID, req.Content.Preview(), settledAt); err != nil {
		// Delivered but not recorded. Settle the row as failed rather than
		// leave it in sending; the provider id goes in the error text so
		// the delivery can be reconciled by hand.
		s.markFailed(ctx, companyID, m.ID, CodeUnknown, "sent as "+providerID+" but status update failed: "+err.Error())
		return SendResult{
			ConversationID: cv.ID,
			ContactID:      ct.ID,
			MessageID:      m.ID,
			Error:          err.Error(),
			Code:           CodeUnknown,
		}
	}

	m.Status = StatusSent
	m.ProviderMessageID = providerID
	m.UpdatedAt = settledAt

	if s.audit != nil {
		if err := s.audit.LogMessageSent(ctx, companyID, actorUserID, cv.ID, m.ID); err != nil {
			logger.From(ctx).Warn("audit append failed", "err", err)
		}
	}

	return SendResult{
		Success:        true,
		ConversationID: cv.ID,
		ContactID:      ct.ID,
		MessageID:      m.ID,
		Message:        &m,
	}
}

// Retry re-runs the whole pipeline for a message already in failed status.
// The failed row stays as an audit trail; a new message row is created.
func (s *Service) Retry(ctx context.Context, companyID, actorUserID, messageID int64) SendResult {
	if companyID <= 0 || messageID <= 0 {
		return failResult(CodeValidationError, "message id required")
	}
	m, ok, err := s.repo.GetByID(ctx, companyID, messageID)
	if err != nil {
		return failResult(CodeUnknown, err.Error())
	}
	if !ok {
		return failResult(CodeValidationError, "message not found")
	}
	if m.Direction != DirectionOutbound || m.Status != StatusFailed {
		return failResult(CodeValidationError, "only failed outbound messages can be retried")
	}

	ct, err := s.contacts.Get(ctx, companyID, m.ContactID)
	if err != nil {
		return failResult(CodeUnknown, err.Error())
	}

	return s.Send(ctx, companyID, actorUserID, SendRequest{Phone: ct.Phone, Content: m.Content})
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Message, error) {
	if companyID <= 0 || id <= 0 {
		return Message{}, ErrInvalidArgument
	}
	m, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return Message{}, err
	}
	if !ok {
		return Message{}, ErrNotFound
	}
	return m, nil
}

type ListRequest struct {
	Cursor string
	Limit  int
}

func (s *Service) List(ctx context.Context, companyID, conversationID int64, req ListRequest) (pagination.Page[Message], error) {
	if companyID <= 0 || conversationID <= 0 {
		return pagination.Page[Message]{}, ErrInvalidArgument
	}
	limit := pagination.DefaultLimit(req.Limit)
	cur := pagination.Decode(req.Cursor)

	rows, err := s.repo.ListByConversation(ctx, companyID, conversationID, cur, limit)
	if err != nil {
		return pagination.Page[Message]{}, err
	}
	return pagination.NewPage(rows, limit, cursorOf), nil
}

func cursorOf(m Message) pagination.Cursor {
	v := m.CreatedAt.UTC().Format(time.RFC3339Nano)
	return pagination.Cursor{SortValue: &v, ID: m.ID}
}

// Clear soft-deletes every message in a conversation and resets its
// summary fields.
func (s *Service) Clear(ctx context.Context, companyID, actorUserID, conversationID int64) error {
	if companyID <= 0 || conversationID <= 0 {
		return ErrInvalidArgument
	}
	if _, err := s.conversations.Get(ctx, companyID, conversationID); err != nil {
		return err
	}
	if err := s.repo.ClearConversation(ctx, companyID, conversationID, s.clock().UTC()); err != nil {
		return err
	}
	if s.audit != nil {
		if err := s.audit.LogConversationAction(ctx, audit.EventTypeConversationCleared, companyID, actorUserID, conversationID, "conversation cleared"); err != nil {
			logger.From(ctx).Warn("audit append failed", "err", err)
		}
	}
	return nil
}

// ProcessInbound records a message received via webhook: find-or-create the
// contact and conversation, insert the settled inbound row, and bump the
// unread counter alongside the summary update.
func (s *Service) ProcessInbound(ctx context.Context, companyID int64, in whatsapp.Inbound) error {
	content, err := contentFromInbound(in)
	if err != nil {
		return err
	}

	ct, err := s.contacts.Resolve(ctx, companyID, in.From)
	if err != nil {
		return err
	}
	if ct.DisplayName == "" && in.ProfileName != "" {
		// Best-effort profile capture; a failure must not drop the message.
		name := in.ProfileName
		if _, err := s.contacts.Update(ctx, companyID, ct.ID, contact.UpdateRequest{DisplayName: &name}); err != nil {
			logger.From(ctx).Warn("profile name update failed", "contact_id", ct.ID, "err", err)
		}
	}

	cv, err := s.conversations.Resolve(ctx, companyID, ct.ID)
	if err != nil {
		return err
	}

	at := in.OccurredAt
	if at.IsZero() {
		at = s.clock().UTC()
	}
	_, err = s.repo.InsertInbound(ctx, Message{
		CompanyID:         companyID,
		ConversationID:    cv.ID,
		ContactID:         ct.ID,
		Direction:         DirectionInbound,
		Status:            StatusDelivered,
		Content:           content,
		ProviderMessageID: in.ProviderMessageID,
		State:             StateActive,
		CreatedAt:         at,
		UpdatedAt:         at,
	}, content.Preview())
	return err
}

// ProcessReceipt applies a delivery/read receipt to the matching outbound
// message. Unknown provider ids and unknown statuses are ignored; receipts
// can arrive out of order or for cleared messages.
func (s *Service) ProcessReceipt(ctx context.Context, companyID int64, rc whatsapp.Receipt) error {
	var status Status
	switch rc.Status {
	case "delivered":
		status = StatusDelivered
	case "read":
		status = StatusRead
	default:
		return nil
	}
	at := rc.OccurredAt
	if at.IsZero() {
		at = s.clock().UTC()
	}
	err := s.repo.SetReceiptStatus(ctx, companyID, rc.ProviderMessageID, status, at)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) markFailed(ctx context.Context, companyID, id int64, code ErrorCode, reason string) {
	if err := s.repo.MarkFailed(ctx, companyID, id, string(code), reason, s.clock().UTC()); err != nil {
		logger.From(ctx).Error("failed to settle message status", "message_id", id, "err", err)
	}
}

func (s *Service) logSendFailed(ctx context.Context, companyID, actorUserID, conversationID, messageID int64, code ErrorCode, reason string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogMessageSendFailed(ctx, companyID, actorUserID, conversationID, messageID, string(code), reason); err != nil {
		logger.From(ctx).Warn("audit append failed", "err", err)
	}
}

func failResult(code ErrorCode, msg string) SendResult {
	return SendResult{Error: msg, Code: code}
}

func toOutbound(phone string, c Content) whatsapp.Outbound {
	out := whatsapp.Outbound{To: phone}
	switch c.Type {
	case ContentText:
		out.Type = whatsapp.PayloadText
		out.Text = &whatsapp.TextPayload{Body: c.Text.Body}
	case ContentImage:
		out.Type = whatsapp.PayloadImage
		out.Image = &whatsapp.MediaPayload{Link: c.Image.Link, Caption: c.Image.Caption}
	case ContentAudio:
		out.Type = whatsapp.PayloadAudio
		out.Audio = &whatsapp.MediaPayload{Link: c.Audio.Link, Caption: c.Audio.Caption}
	case ContentTemplate:
		out.Type = whatsapp.PayloadTemplate
		out.Template = &whatsapp.TemplatePayload{Name: c.Template.Name, Language: c.Template.Language}
	}
	return out
}

func contentFromInbound(in whatsapp.Inbound) (Content, error) {
	var c Content
	switch in.Type {
	case whatsapp.PayloadText:
		if in.Text == nil {
			return Content{}, ErrInvalidContent
		}
		c = Content{Type: ContentText, Text: &TextContent{Body: in.Text.Body}}
	case whatsapp.PayloadImage:
		if in.Image == nil {
			return Content{}, ErrInvalidContent
		}
		c = Content{Type: ContentImage, Image: &MediaContent{Link: in.Image.Link, Caption: in.Image.Caption}}
	case whatsapp.PayloadAudio:
		if in.Audio == nil {
			return Content{}, ErrInvalidContent
		}
		c = Content{Type: ContentAudio, Audio: &MediaContent{Link: in.Audio.Link}}
	default:
		return Content{}, ErrInvalidContent
	}
	return c, c.Validate()
}
