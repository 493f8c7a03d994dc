package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	approvalmapper "github.com/partsflow/procurement-api/internal/domains/approvals/adapters/http/mapper"
	approvalsports "github.com/partsflow/procurement-api/internal/domains/approvals/ports"
)

// ApprovalAPI wires HTTP transport with the approvals bounded context service.
type ApprovalAPI struct {
	service approvalsports.Service
}

// NewApprovalAPI creates an ApprovalAPI backed by the provided service.
func NewApprovalAPI(service approvalsports.Service) ApprovalAPI {
	return ApprovalAPI{service: service}
}

// Get /v1/approvals
// List approval records still awaiting a decision
func (api *ApprovalAPI) ListPending(c *gin.Context) {
	records, err := api.service.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvalmapper.FromRecordList(records))
}

// Get /v1/approvals/:approvalNo
// Fetch one approval record
func (api *ApprovalAPI) GetApproval(c *gin.Context) {
	record, err := api.service.GetByNo(c.Request.Context(), c.Param("approvalNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvalmapper.FromRecord(record))
}

// Post /v1/approvals/:approvalNo/resolve
// Record the approve/reject decision exactly once
func (api *ApprovalAPI) Resolve(c *gin.Context) {
	var payload approvalmapper.Resolve
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	resolved, err := api.service.Resolve(c.Request.Context(), approvalmapper.ToResolveInput(c.Param("approvalNo"), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvalmapper.FromRecord(resolved))
}
