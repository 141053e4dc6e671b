package ports

import "context"

// ContextKey type for context keys
type ContextKey string

const accessTokenKey ContextKey = "access_token"

// WithAccessToken stores the caller's access token so store adapters can act
// on the user's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

// AccessToken retrieves the token stored by WithAccessToken.
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)
	return token, ok && token != ""
}
