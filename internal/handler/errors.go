package handler

import (
	"errors"
	"net/http"

	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/pkg/response"
)

// writeError maps service errors onto HTTP responses: validation failures to
// 400, missing entities to 404, detected races to 409 (retryable), anything
// infrastructural to 500.
func writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		switch businessErr.Code {
		case customError.ErrCodeClientNotFound,
			customError.ErrCodeLoanNotFound,
			customError.ErrCodeInstallmentNotFound:
			response.ErrorWithCode(w, http.StatusNotFound, businessErr.Code, businessErr.Message, nil)
		case customError.ErrCodeConcurrentConflict:
			response.ErrorWithCode(w, http.StatusConflict, businessErr.Code, businessErr.Message, nil)
		case customError.ErrCodeDatabaseError,
			customError.ErrCodeCacheError,
			customError.ErrCodeRenderError:
			response.ErrorWithCode(w, http.StatusInternalServerError, businessErr.Code, businessErr.Message, businessErr.Err)
		default:
			response.ErrorWithCode(w, http.StatusBadRequest, businessErr.Code, businessErr.Message, nil)
		}
		return
	}

	if errors.Is(err, customError.ErrInvalidInput) {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	response.InternalServerError(w, "unexpected error", err)
}
