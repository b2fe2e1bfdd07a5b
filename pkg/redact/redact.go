// redact маскирует секреты перед записью в лог.
package redact

import (
	"net/url"
	"strings"
)

// Password — литерал-заглушка для пароля в логах.
const Password = "[REDACTED_PASSWORD]"

// URL маскирует пароль в строке подключения (postgres://, redis://).
//
// Правила:
//   - пароль заменяется на Password, пользователь, хост, путь и параметры сохраняются;
//   - параметр password в query (key=value DSN через URL) тоже маскируется;
//   - строка, которая не разбирается как URL со схемой, возвращается как "***".
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "***"
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "REDACTED")
		}
	}

	q := u.Query()
	if q.Has("password") {
		q.Set("password", "REDACTED")
		u.RawQuery = q.Encode()
	}

	return strings.ReplaceAll(u.String(), "REDACTED", Password)
}
