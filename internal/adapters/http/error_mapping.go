package httpadapter

import (
	"net/http"

	"docchat/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrModelMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
