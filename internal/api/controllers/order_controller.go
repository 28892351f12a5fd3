package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jollymart/internal/models/response_models"
	"jollymart/internal/services"
	"jollymart/pkg/utils"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// GetByPaymentReference godoc
// @Summary Look up the order produced by a payment
// @Tags Orders
// @Produce json
// @Param paymentId query string true "Payment ID"
// @Success 200 {object} utils.APIResponse
// @Router /orders [get]
func (o *OrderController) GetByPaymentReference(c *gin.Context) {
	paymentID := c.Query("paymentId")
	if _, err := uuid.Parse(paymentID); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "paymentId must be a valid id")
		return
	}

	order, err := o.orderService.GetByPaymentReference(c.Request.Context(), paymentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	resp, err := response_models.OrderResponseFromModel(order)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "")
}
