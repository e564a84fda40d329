package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyRunId    = ContextKey("RunId")
	ContextKeyOperator = ContextKey("Operator")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func GetRunId(ctx context.Context) (string, bool) {
	return GetString(ctx, ContextKeyRunId)
}

func SetRunId(ctx context.Context, runId string) context.Context {
	return Set(ctx, ContextKeyRunId, runId)
}

func GetOperator(ctx context.Context) (string, bool) {
	return GetString(ctx, ContextKeyOperator)
}

func SetOperator(ctx context.Context, operator string) context.Context {
	return Set(ctx, ContextKeyOperator, operator)
}
