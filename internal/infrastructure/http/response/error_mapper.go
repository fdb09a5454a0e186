package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrVoucherNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Voucher not found",
	},
	domainErrors.ErrSaleNotStarted: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusError,
		Message:    "Sale has not started yet",
	},
	domainErrors.ErrSaleEnded: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusError,
		Message:    "Sale has already ended",
	},
	domainErrors.ErrOutOfStock: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Voucher is out of stock",
	},
	domainErrors.ErrDuplicateOrder: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "You have already ordered this voucher",
	},
	domainErrors.ErrSaleNotInitialized: {
		HTTPStatus: http.StatusServiceUnavailable,
		Status:     StatusServiceUnavailable,
		Message:    "Sale is not initialized",
	},
	domainErrors.ErrInvalidStock: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Stock must be positive",
	},
	domainErrors.ErrInvalidWindow: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Sale window end must be after begin",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			return mapping.HTTPStatus, Error(mapping.Status, mapping.Message)
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error")
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
