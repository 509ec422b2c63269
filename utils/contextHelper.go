package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/office_backend/appctx"
)

var (
	ContextKeyBusinessId    = appctx.ContextKeyBusinessId
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetBusinessIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyBusinessId)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetBusinessIdInContext(ctx context.Context, businessId string) context.Context {
	return appctx.Set(ctx, ContextKeyBusinessId, businessId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
