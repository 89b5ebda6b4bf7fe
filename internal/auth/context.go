package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxCompanyID
	ctxRole
)

func WithIdentity(ctx context.Context, userID, companyID int64, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxCompanyID, companyID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (int64, error) {
	if v, ok := ctx.Value(ctxUserID).(int64); ok && v > 0 {
		return v, nil
	}
	return 0, errors.New("user_id not in context")
}

func CompanyID(ctx context.Context) (int64, error) {
	if v, ok := ctx.Value(ctxCompanyID).(int64); ok && v > 0 {
		return v, nil
	}
	return 0, errors.New("company_id not in context")
}

func Role(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxRole).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
