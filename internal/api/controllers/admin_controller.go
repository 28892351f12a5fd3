package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jollymart/internal/models/db_models"
	"jollymart/internal/models/request_models"
	"jollymart/internal/services"
	"jollymart/pkg/utils"
)

// AdminController exposes the operator surface: a manual reconcile trigger
// for stuck payments and order status transitions. Routes sit behind JWT +
// role middleware; this is not a customer-facing API.
type AdminController struct {
	reconciler   services.ReconciliationService
	orderService services.OrderService
}

func NewAdminController(reconciler services.ReconciliationService, orderService services.OrderService) *AdminController {
	return &AdminController{
		reconciler:   reconciler,
		orderService: orderService,
	}
}

// TriggerReconcile feeds a hand-entered completion signal through the same
// reconcile path the webhook and the poll use.
func (a *AdminController) TriggerReconcile(c *gin.Context) {
	var request request_models.ReconcileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := a.reconciler.Reconcile(c.Request.Context(),
		request.PaymentID, request.ExternalTransactionID,
		services.GatewayStatus(request.ReportedStatus))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	data := gin.H{"status": res.Entry.Status}
	if res.Order != nil {
		data["order_number"] = res.Order.OrderNumber
	}
	utils.RespondSuccess(c, data, "Reconciled")
}

type orderStatusUpdate struct {
	Status string `json:"status" binding:"required,oneof=pending_payment paid failed cancelled"`
}

func (a *AdminController) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "order id must be a valid id")
		return
	}

	var request orderStatusUpdate
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := a.orderService.UpdateStatus(c.Request.Context(), orderID, db_models.OrderStatus(request.Status)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Order status updated")
}
