package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"jollymart/internal/api/controllers"
	"jollymart/internal/models/db_models"
	"jollymart/pkg/middleware"
	"jollymart/pkg/utils"
)

type fakeOrderService struct {
	getFn func(ctx context.Context, paymentID string) (*db_models.Order, error)
}

func (f *fakeOrderService) Materialize(ctx context.Context, entry *db_models.PaymentLedgerEntry) (*db_models.Order, error) {
	panic("not used by controller tests")
}

func (f *fakeOrderService) GetByPaymentReference(ctx context.Context, paymentID string) (*db_models.Order, error) {
	return f.getFn(ctx, paymentID)
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID string, status db_models.OrderStatus) error {
	return nil
}

func newOrderRouter(orderService *fakeOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.GET("/orders", controllers.NewOrderController(orderService).GetByPaymentReference)
	return r
}

func TestGetOrderByPaymentReference_ReturnsOrder(t *testing.T) {
	paymentID := uuid.New()
	order := &db_models.Order{
		OrderNumber:      "JM-20260828120000-0042",
		PaymentReference: paymentID,
		Currency:         "USD",
		SubtotalMinor:    9200,
		TaxMinor:         800,
		TotalMinor:       10000,
		Status:           db_models.OrderStatusPaid,
	}
	order.ID = uuid.New()
	require.NoError(t, order.SetLineItems([]db_models.OrderItem{
		{ProductID: "p1", Name: "Wreath", UnitPriceMinor: 4600, Quantity: 2, LineTotalMinor: 9200},
	}))

	router := newOrderRouter(&fakeOrderService{
		getFn: func(ctx context.Context, id string) (*db_models.Order, error) {
			require.Equal(t, paymentID.String(), id)
			return order, nil
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?paymentId="+paymentID.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"subtotal":"92.00"`)
	require.Contains(t, w.Body.String(), `"tax_amount":"8.00"`)
	require.Contains(t, w.Body.String(), `"total":"100.00"`)
}

func TestGetOrderByPaymentReference_MissingOrderIs404(t *testing.T) {
	router := newOrderRouter(&fakeOrderService{
		getFn: func(ctx context.Context, id string) (*db_models.Order, error) {
			return nil, utils.ErrNotFound
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?paymentId="+uuid.New().String(), nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderByPaymentReference_MalformedIDIs400(t *testing.T) {
	router := newOrderRouter(&fakeOrderService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?paymentId=bogus", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}
