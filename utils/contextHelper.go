package utils

import "context"

type contextKey string

const (
	ContextKeyAuth          contextKey = "auth"
	ContextKeyToken         contextKey = "token"
	ContextKeyCorrelationId contextKey = "correlation_id"
)

func SetClaimsInContext(ctx context.Context, claims *JwtCustomClaim) context.Context {
	return context.WithValue(ctx, ContextKeyAuth, claims)
}

// GetClaimsFromContext returns nil when the request carried no valid token.
func GetClaimsFromContext(ctx context.Context) *JwtCustomClaim {
	raw, _ := ctx.Value(ContextKeyAuth).(*JwtCustomClaim)
	return raw
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyToken, token)
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ContextKeyToken).(string)
	return token, ok
}

func SetCorrelationIdInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationId, id)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyCorrelationId).(string)
	return id, ok
}
