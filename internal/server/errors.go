package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cataldomain "github.com/recuerdos/tienda/internal/catalog/domain"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	paymentdomain "github.com/recuerdos/tienda/internal/payment/domain"
	saledomain "github.com/recuerdos/tienda/internal/sale/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware turns errors attached to the context into a JSON
// body. Handlers that already wrote a response are left untouched.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrEmptyCart),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidInvoice),
		errors.Is(err, orderdomain.ErrWhatsAppDisabled),
		errors.Is(err, cataldomain.ErrInvalidName),
		errors.Is(err, cataldomain.ErrInvalidPrice),
		errors.Is(err, cataldomain.ErrInvalidCode),
		errors.Is(err, saledomain.ErrInvalidQuantity),
		errors.Is(err, saledomain.ErrInvalidPrice),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotApproved),
		errors.Is(err, paymentdomain.ErrAlreadyReplayed):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}

	case errors.Is(err, orderdomain.ErrUnknownProduct),
		errors.Is(err, orderdomain.ErrUnknownSku):
		return http.StatusUnprocessableEntity, errorPayload{Type: "validation_error", Message: err.Error()}

	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, cataldomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "resource not found"}

	case errors.Is(err, cataldomain.ErrSlugTaken):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
