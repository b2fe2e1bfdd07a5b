package storage

import "context"

type tokenKey struct{}

// WithAccessToken кладёт «сырой» bearer-токен запроса в контекст.
// Хранилище передаёт его политикам доступа; валидация токена — вне сервиса.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken достаёт bearer-токен из контекста.
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
