// Package httpapi exposes the procurement bounded contexts over gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIHandlers groups the per-context handler sets the router mounts.
type APIHandlers struct {
	OrderAPI    OrderAPI
	QuoteAPI    QuoteAPI
	ApprovalAPI ApprovalAPI
}

// NewRouter builds a gin engine with every procurement route mounted.
func NewRouter(handlers APIHandlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", handlers.OrderAPI.CreateOrder)
			orders.GET("", handlers.OrderAPI.ListOrders)
			orders.GET("/:orderNo", handlers.OrderAPI.GetOrder)
			orders.GET("/:orderNo/timeline", handlers.OrderAPI.GetTimeline)
			orders.PUT("/:orderNo/quantities", handlers.OrderAPI.UpdateQuantities)
			orders.POST("/:orderNo/cart", handlers.OrderAPI.QueueQuantityEdits)
			orders.POST("/:orderNo/submit", handlers.OrderAPI.SubmitDraft)
			orders.POST("/:orderNo/draft-approval", handlers.OrderAPI.ResolveDraftApproval)
			orders.POST("/:orderNo/inquiry", handlers.OrderAPI.SendInquiry)
			orders.POST("/:orderNo/inquiry/complete", handlers.OrderAPI.CompleteInquiry)
			orders.POST("/:orderNo/choices", handlers.OrderAPI.RecordChoice)
			orders.DELETE("/:orderNo/choices", handlers.OrderAPI.ClearChoices)
			orders.POST("/:orderNo/selections", handlers.OrderAPI.SubmitSelections)
			orders.POST("/:orderNo/arrivals", handlers.OrderAPI.ConfirmArrival)
			orders.GET("/:orderNo/quotes", handlers.QuoteAPI.ListQuotes)
		}

		inquiries := v1.Group("/inquiries")
		{
			inquiries.POST("", handlers.QuoteAPI.OpenInquiry)
			inquiries.POST("/:orderNo/close", handlers.QuoteAPI.CloseInquiry)
		}

		v1.POST("/quotes", handlers.QuoteAPI.SubmitQuote)

		approvals := v1.Group("/approvals")
		{
			approvals.GET("", handlers.ApprovalAPI.ListPending)
			approvals.GET("/:approvalNo", handlers.ApprovalAPI.GetApproval)
			approvals.POST("/:approvalNo/resolve", handlers.ApprovalAPI.Resolve)
		}
	}

	return router
}
