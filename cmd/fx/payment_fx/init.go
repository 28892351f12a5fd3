package payment_fx

import (
	"log"
	"os"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"jollymart/internal/api/controllers"
	"jollymart/internal/repositories"
	"jollymart/internal/services"
	mem "jollymart/pkg/memcache"
)

var Module = fx.Provide(
	provideLedgerRepository,
	provideGateway,
	provideSeenEvents,
	provideReconciliationService,
	providePaymentService,
	providePaymentController,
	provideAdminController,
)

func provideLedgerRepository(db *gorm.DB) repositories.LedgerRepository {
	return repositories.NewLedgerRepository(db)
}

func provideGateway() services.GatewayClient {
	cfg := services.StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CallTimeout:   10 * time.Second,
		TestMode:      os.Getenv("PAYMENT_TEST_MODE") == "true",
	}

	gateway, err := services.NewStripeGateway(cfg)
	if err != nil {
		log.Fatalf("Error initializing payment gateway: %v", err)
	}
	return gateway
}

func provideSeenEvents() mem.SeenEventStore {
	return mem.NewSeenEvents()
}

func provideReconciliationService(
	ledgerRepo repositories.LedgerRepository,
	orders services.OrderService,
	gateway services.GatewayClient) services.ReconciliationService {
	return services.NewReconciliationService(ledgerRepo, orders, gateway)
}

func providePaymentService(
	ledgerRepo repositories.LedgerRepository,
	gateway services.GatewayClient,
	reconciler services.ReconciliationService) services.PaymentService {
	cfg := services.PaymentConfig{
		TTL:        paymentTTL(),
		AppBaseURL: os.Getenv("APP_BASE_URL"),
	}

	instance, err := services.NewPaymentService(ledgerRepo, gateway, reconciler, cfg)
	if err != nil {
		log.Fatalf("Error initializing PaymentService: %v", err)
	}
	return instance
}

func providePaymentController(
	paymentService services.PaymentService,
	reconciler services.ReconciliationService,
	seenEvents mem.SeenEventStore) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService, reconciler, seenEvents,
		os.Getenv("STRIPE_WEBHOOK_SECRET"))
}

func provideAdminController(
	reconciler services.ReconciliationService,
	orderService services.OrderService) *controllers.AdminController {
	return controllers.NewAdminController(reconciler, orderService)
}

func paymentTTL() time.Duration {
	raw := os.Getenv("PAYMENT_TTL")
	if raw == "" {
		return 15 * time.Minute
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		log.Printf("invalid PAYMENT_TTL %q, using default", raw)
		return 15 * time.Minute
	}
	return ttl
}
