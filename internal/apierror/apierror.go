// apierror стандартизирует ответы об ошибках HTTP-слоя sports-api.
// На вход он принимает ошибку сервиса/хранилища, а на выход даёт:
//   - одну из категорий Kind;
//   - HTTP-статус категории;
//   - безопасное сообщение без утечки деталей.
//
// Классификация терминальна: после неё хендлер пишет ответ и завершает запрос, ретраев нет.
package apierror

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/service"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Kind — категория ошибки.
type Kind int

const (
	// UpstreamFailure — любая иная ошибка выборки или программная ошибка (500).
	UpstreamFailure Kind = iota
	// BadRequest — битый курсор, недопустимый лимит, отсутствующий обязательный параметр (400).
	BadRequest
	// AuthFailure — отказ хранилища по учётным данным или правам (401/403).
	AuthFailure
	// NotFound — обязательная одиночная запись отсутствует (404).
	NotFound
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case AuthFailure:
		return "auth_failure"
	case NotFound:
		return "not_found"
	default:
		return "upstream_failure"
	}
}

// Error — результат классификации.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

// ErrorResponse — тело ответа об ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Classify переводит ошибку в категорию.
//
// Порядок проверок:
//   - err == nil — программная ошибка вызова: UpstreamFailure, чтобы не отдать 200 с телом ошибки;
//   - битый курсор (pagination.ErrFormat) -> BadRequest("cursor");
//   - service.ErrInvalidArgument -> BadRequest с именем параметра;
//   - storage.ErrUnauthorized -> AuthFailure/401, storage.ErrPermissionDenied -> AuthFailure/403;
//   - service.ErrNotFound, storage.ErrNotFound -> NotFound;
//   - прочее -> UpstreamFailure/500.
func Classify(err error) Error {
	if err == nil {
		return upstream()
	}

	var pe *service.ParamError
	hasParam := errors.As(err, &pe)

	switch {
	case errors.Is(err, pagination.ErrFormat):
		return Error{Kind: BadRequest, Status: http.StatusBadRequest, Message: "invalid parameter: cursor"}
	case errors.Is(err, service.ErrInvalidArgument):
		msg := "invalid parameter"
		if hasParam {
			msg += ": " + pe.Param
		}
		return Error{Kind: BadRequest, Status: http.StatusBadRequest, Message: msg}
	case errors.Is(err, storage.ErrUnauthorized):
		return Error{Kind: AuthFailure, Status: http.StatusUnauthorized, Message: "unauthorized"}
	case errors.Is(err, storage.ErrPermissionDenied):
		return Error{Kind: AuthFailure, Status: http.StatusForbidden, Message: "forbidden"}
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		msg := "not found"
		if hasParam && pe.Param != "" {
			msg += ": " + pe.Param
		}
		return Error{Kind: NotFound, Status: http.StatusNotFound, Message: msg}
	}

	return upstream()
}

func upstream() Error {
	return Error{Kind: UpstreamFailure, Status: http.StatusInternalServerError, Message: "internal error"}
}

// IsClientGone сообщает, что запрос прерван клиентом (ответ уже никто не прочитает).
func IsClientGone(err error) bool {
	return errors.Is(err, context.Canceled)
}

// WriteError — хелпер для HTTP-хендлеров: пишет статус и тело {"error": "..."}.
func WriteError(w http.ResponseWriter, err error) Error {
	e := Classify(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e.Message})

	return e
}
