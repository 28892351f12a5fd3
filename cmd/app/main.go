package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"jollymart/cmd/fx/db_fx"
	"jollymart/cmd/fx/mail_fx"
	"jollymart/cmd/fx/order_fx"
	"jollymart/cmd/fx/payment_fx"
	"jollymart/internal/api/controllers"
	"jollymart/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	app := fx.New(
		db_fx.Module,
		mail_fx.Module,
		order_fx.Module,
		payment_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Println("Starting HTTP server at ${PORT}")
				if err := engine.Run(":" + os.Getenv("PORT")); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	paymentController *controllers.PaymentController,
	orderController *controllers.OrderController,
	adminController *controllers.AdminController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, paymentController, orderController, adminController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	paymentController *controllers.PaymentController,
	orderController *controllers.OrderController,
	adminController *controllers.AdminController) {

	paymentGroup := r.Group("/payment")
	paymentGroup.POST("/create", paymentController.CreatePayment)
	paymentGroup.GET("/status", paymentController.Status)

	r.POST("/webhook/payment-gateway", paymentController.HandleWebhook)

	r.GET("/orders", orderController.GetByPaymentReference)

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RoleMiddleware("ops"))
	adminGroup.POST("/reconcile", adminController.TriggerReconcile)
	adminGroup.POST("/orders/:id/status", adminController.UpdateOrderStatus)
}
