package httpapi

import (
	"errors"

	"github.com/gin-gonic/gin"

	approvalsdomain "github.com/partsflow/procurement-api/internal/domains/approvals/domain"
	approvalsports "github.com/partsflow/procurement-api/internal/domains/approvals/ports"
	ordersapp "github.com/partsflow/procurement-api/internal/domains/orders/application"
	ordersports "github.com/partsflow/procurement-api/internal/domains/orders/ports"
	quotesapp "github.com/partsflow/procurement-api/internal/domains/quotes/application"
	quotesdomain "github.com/partsflow/procurement-api/internal/domains/quotes/domain"
	quotesports "github.com/partsflow/procurement-api/internal/domains/quotes/ports"
	apierrors "github.com/partsflow/procurement-api/internal/shared/errors"
)

// respondBindError reports a malformed or incomplete request body.
func respondBindError(c *gin.Context, err error) {
	apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondServiceError maps application and domain errors onto RFC 7807
// problems. Unrecognized errors surface as internal.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound),
		errors.Is(err, quotesports.ErrNotFound),
		errors.Is(err, approvalsports.ErrNotFound):
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail(err.Error()))
	case errors.Is(err, approvalsdomain.ErrAlreadyResolved):
		apierrors.Respond(c, apierrors.ErrAlreadyResolved.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrValidation),
		errors.Is(err, quotesapp.ErrInvalidQuote):
		apierrors.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrConflict),
		errors.Is(err, quotesapp.ErrInquiryNotOpen),
		errors.Is(err, quotesdomain.ErrAlreadyInquired):
		apierrors.Respond(c, apierrors.NewConflictProblem(err.Error()))
	default:
		apierrors.Respond(c, apierrors.ErrInternal.WithDetail(err.Error()))
	}
}
