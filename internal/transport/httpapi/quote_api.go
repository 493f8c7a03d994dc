package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	quotemapper "github.com/partsflow/procurement-api/internal/domains/quotes/adapters/http/mapper"
	quotesports "github.com/partsflow/procurement-api/internal/domains/quotes/ports"
)

// QuoteAPI wires HTTP transport with the quotes bounded context service.
type QuoteAPI struct {
	service quotesports.Service
}

// NewQuoteAPI creates a QuoteAPI backed by the provided service.
func NewQuoteAPI(service quotesports.Service) QuoteAPI {
	return QuoteAPI{service: service}
}

// Post /v1/inquiries
// Open a request-for-quote round for an order
func (api *QuoteAPI) OpenInquiry(c *gin.Context) {
	var payload quotemapper.OpenInquiry
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := api.service.OpenInquiry(c.Request.Context(), quotemapper.ToOpenInquiryInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quotemapper.FromInquiry(saved))
}

// Post /v1/inquiries/:orderNo/close
// Close the order's open inquiry round
func (api *QuoteAPI) CloseInquiry(c *gin.Context) {
	if err := api.service.CloseInquiry(c.Request.Context(), c.Param("orderNo")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/quotes
// Record a supplier's quote against an open inquiry
func (api *QuoteAPI) SubmitQuote(c *gin.Context) {
	var payload quotemapper.SubmitQuote
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := api.service.SubmitQuote(c.Request.Context(), quotemapper.ToSubmitQuoteInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quotemapper.FromQuote(saved))
}

// Get /v1/orders/:orderNo/quotes
// List every supplier quote submitted against the order
func (api *QuoteAPI) ListQuotes(c *gin.Context) {
	quotes, err := api.service.QuotesByOrder(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotemapper.FromQuoteList(quotes))
}
