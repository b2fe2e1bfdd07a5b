package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestURL_Table — маскирование строк подключения к Postgres и Redis.
func TestURL_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "postgres_with_password", in: "postgres://app:s3cret@db:5432/sports?sslmode=disable", want: "postgres://app:[REDACTED_PASSWORD]@db:5432/sports?sslmode=disable"},
		{name: "redis_password_only", in: "redis://:s3cret@cache:6379/0", want: "redis://:[REDACTED_PASSWORD]@cache:6379/0"},
		{name: "no_credentials", in: "redis://cache:6379/0", want: "redis://cache:6379/0"},
		{name: "user_without_password", in: "postgres://app@db/sports", want: "postgres://app@db/sports"},
		{name: "password_in_query", in: "postgres://db/sports?password=s3cret", want: "postgres://db/sports?password=[REDACTED_PASSWORD]"},
		{name: "keyword_dsn", in: "host=db user=app password=s3cret", want: "***"},
		{name: "empty", in: "", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := URL(tt.in)
			require.Equal(t, tt.want, got)
			require.NotContains(t, got, "s3cret")
		})
	}
}
