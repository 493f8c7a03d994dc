package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/partsflow/procurement-api/internal/domains/orders/adapters/http/mapper"
	ordersapp "github.com/partsflow/procurement-api/internal/domains/orders/application"
	orderstypes "github.com/partsflow/procurement-api/internal/domains/orders/application/types"
	ordersdomain "github.com/partsflow/procurement-api/internal/domains/orders/domain"
	ordersports "github.com/partsflow/procurement-api/internal/domains/orders/ports"
)

// OrderAPI wires HTTP transport with the orders bounded context service and
// workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
	cart      *ordersapp.DraftCart
}

// NewOrderAPI creates an OrderAPI backed by the provided service. The cart
// is optional; without one, queued edits apply immediately.
func NewOrderAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator, cart *ordersapp.DraftCart) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, cart: cart}
}

// Post /v1/orders
// Create a draft purchase order
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := api.service.CreateDraft(c.Request.Context(), ordermapper.ToCreateDraftInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromProjection(saved))
}

// Get /v1/orders
// List purchase orders
func (api *OrderAPI) ListOrders(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjectionList(result))
}

// Get /v1/orders/:orderNo
// Fetch one order with its reconciled quote matrix
func (api *OrderAPI) GetOrder(c *gin.Context) {
	detail, err := api.service.GetOrderDetail(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDetail(detail))
}

// Get /v1/orders/:orderNo/timeline
// Fetch the order's status timeline
func (api *OrderAPI) GetTimeline(c *gin.Context) {
	entries, err := api.service.GetTimeline(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromTimeline(entries))
}

// Put /v1/orders/:orderNo/quantities
// Apply quantity edits to a draft immediately
func (api *OrderAPI) UpdateQuantities(c *gin.Context) {
	var payload []ordermapper.QuantityEdit
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.UpdateDraftQuantities(c.Request.Context(), c.Param("orderNo"), ordermapper.ToQuantityEdits(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

// Post /v1/orders/:orderNo/cart
// Queue quantity edits; they flush as one batch once the edits go quiet
func (api *OrderAPI) QueueQuantityEdits(c *gin.Context) {
	var payload []ordermapper.QuantityEdit
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	orderNo := c.Param("orderNo")
	if api.cart == nil {
		updated, err := api.service.UpdateDraftQuantities(c.Request.Context(), orderNo, ordermapper.ToQuantityEdits(payload))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
		return
	}
	for _, edit := range ordermapper.ToQuantityEdits(payload) {
		api.cart.Queue(orderNo, edit)
	}
	c.Status(http.StatusAccepted)
}

// Post /v1/orders/:orderNo/submit
// Submit the draft into the first approval gate
func (api *OrderAPI) SubmitDraft(c *gin.Context) {
	var payload ordermapper.OperatorRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.SubmitDraft(c.Request.Context(), c.Param("orderNo"), payload.Operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

// Post /v1/orders/:orderNo/draft-approval
// Record the first-gate approval decision
func (api *OrderAPI) ResolveDraftApproval(c *gin.Context) {
	var payload ordermapper.DecisionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.ResolveDraftApproval(c.Request.Context(), c.Param("orderNo"), payload.Operator, *payload.Approved, payload.Remark)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

// Post /v1/orders/:orderNo/inquiry
// Open the supplier inquiry window
func (api *OrderAPI) SendInquiry(c *gin.Context) {
	var payload ordermapper.InquiryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.SendInquiry(c.Request.Context(), c.Param("orderNo"), payload.Operator, payload.Deadline)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

// Post /v1/orders/:orderNo/inquiry/complete
// Close the inquiry window once supplier quotes are in
func (api *OrderAPI) CompleteInquiry(c *gin.Context) {
	var payload ordermapper.OperatorRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.CompleteInquiry(c.Request.Context(), c.Param("orderNo"), payload.Operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

// Post /v1/orders/:orderNo/choices
// Record a provisional supplier choice for one line item
func (api *OrderAPI) RecordChoice(c *gin.Context) {
	var payload ordermapper.ChoiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	if err := api.service.RecordChoice(c.Request.Context(), c.Param("orderNo"), ordermapper.ToSelectionPair(payload)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /v1/orders/:orderNo/choices
// Forget every provisional choice for the order
func (api *OrderAPI) ClearChoices(c *gin.Context) {
	api.service.ClearChoices(c.Param("orderNo"))
	c.Status(http.StatusNoContent)
}

// Post /v1/orders/:orderNo/selections
// Commit supplier choices atomically
func (api *OrderAPI) SubmitSelections(c *gin.Context) {
	var payload ordermapper.SelectionsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := ordermapper.ToSubmitSelectionsInput(c.Param("orderNo"), payload)
	outcome, err := api.commitSelection(c, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromSelectionOutcome(outcome))
}

func (api *OrderAPI) commitSelection(c *gin.Context, input orderstypes.SubmitSelectionsInput) (*orderstypes.SelectionOutcome, error) {
	if api.workflows != nil {
		return api.workflows.CommitSelection(c.Request.Context(), input)
	}
	return api.service.SubmitSelections(c.Request.Context(), input)
}

// Post /v1/orders/:orderNo/arrivals
// Confirm arrival for the referenced quotes
func (api *OrderAPI) ConfirmArrival(c *gin.Context) {
	var payload ordermapper.ArrivalRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.ConfirmArrival(c.Request.Context(), orderstypes.ConfirmArrivalInput{
		OrderNo:   c.Param("orderNo"),
		QuoteRefs: payload.QuoteRefs,
		Operator:  payload.Operator,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

func parseListFilter(c *gin.Context) (orderstypes.ListFilter, error) {
	var filter orderstypes.ListFilter
	for _, raw := range c.QueryArray("status") {
		filter.Statuses = append(filter.Statuses, ordersdomain.OrderStatus(raw))
	}
	filter.CreatorName = c.Query("creator")
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return orderstypes.ListFilter{}, err
		}
		filter.CreatedFrom = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return orderstypes.ListFilter{}, err
		}
		filter.CreatedTo = to
	}
	return filter, nil
}
