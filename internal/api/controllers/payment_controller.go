package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"jollymart/internal/models/db_models"
	"jollymart/internal/models/request_models"
	"jollymart/internal/services"
	mem "jollymart/pkg/memcache"
	"jollymart/pkg/utils"
)

// seenEventTTL bounds how long processed gateway event ids are remembered.
// The reconcile path is idempotent anyway; this only spares database reads
// on webhook redelivery bursts.
const seenEventTTL = time.Hour

type PaymentController struct {
	paymentService services.PaymentService
	reconciler     services.ReconciliationService
	seenEvents     mem.SeenEventStore
	webhookSecret  string
}

func NewPaymentController(
	paymentService services.PaymentService,
	reconciler services.ReconciliationService,
	seenEvents mem.SeenEventStore,
	webhookSecret string) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		reconciler:     reconciler,
		seenEvents:     seenEvents,
		webhookSecret:  webhookSecret,
	}
}

// CreatePayment godoc
// @Summary Create a QR payment
// @Description Creates a pending ledger entry and a gateway payment intent, returns the QR target URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentRequest true "Create Payment Request"
// @Success 200 {object} utils.APIResponse
// @Router /payment/create [post]
func (p *PaymentController) CreatePayment(c *gin.Context) {
	var request request_models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := p.paymentService.CreatePayment(c.Request.Context(), &request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Payment created")
}

// Status godoc
// @Summary Poll payment status
// @Description Returns the current ledger status; reconciles against the gateway inline while pending
// @Tags Payments
// @Produce json
// @Param paymentId query string true "Payment ID"
// @Success 200 {object} utils.APIResponse
// @Router /payment/status [get]
func (p *PaymentController) Status(c *gin.Context) {
	paymentID := c.Query("paymentId")
	if _, err := uuid.Parse(paymentID); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "paymentId must be a valid id")
		return
	}

	resp, err := p.paymentService.Status(c.Request.Context(), paymentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if resp.Status == string(db_models.LedgerStatusExpired) {
		utils.RespondData(c, http.StatusGone, resp, "Payment expired")
		return
	}

	utils.RespondSuccess(c, resp, "")
}

// HandleWebhook processes gateway push notifications. The payload signature
// is verified before anything else; duplicate and irrelevant events are
// acknowledged with 200 so the gateway stops redelivering.
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), p.webhookSecret)
	if err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		utils.RespondError(c, http.StatusForbidden, "Invalid webhook signature")
		return
	}

	if p.seenEvents.Seen(event.ID) {
		utils.RespondSuccess(c, nil, "Duplicate event ignored")
		return
	}

	var reported services.GatewayStatus
	switch event.Type {
	case "payment_intent.succeeded":
		reported = services.GatewayStatusSucceeded
	case "payment_intent.payment_failed":
		reported = services.GatewayStatusFailed
	case "payment_intent.canceled":
		reported = services.GatewayStatusCanceled
	default:
		utils.RespondSuccess(c, nil, "Event type ignored")
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Malformed event payload")
		return
	}

	_, err = p.reconciler.ReconcileByExternalID(c.Request.Context(), intent.ID, reported)
	switch {
	case err == nil:
		p.seenEvents.MarkSeen(event.ID, seenEventTTL)
		utils.RespondSuccess(c, nil, "Processed")
	case errors.Is(err, utils.ErrNotFound):
		// ack unknown intents so the gateway stops redelivering
		log.Printf("webhook: no ledger entry for intent %s", intent.ID)
		p.seenEvents.MarkSeen(event.ID, seenEventTTL)
		utils.RespondSuccess(c, nil, "No matching payment")
	case errors.Is(err, utils.ErrExpired):
		// permanent no-op: the payment landed after expiry
		log.Printf("webhook: intent %s arrived after ledger expiry", intent.ID)
		p.seenEvents.MarkSeen(event.ID, seenEventTTL)
		utils.RespondSuccess(c, nil, "Payment expired, no order created")
	default:
		// conflicts surface as 409, transient trouble as 503 so the
		// gateway redelivers
		utils.HandleServiceError(c, err)
	}
}
