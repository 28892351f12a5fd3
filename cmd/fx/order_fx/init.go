package order_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"jollymart/internal/api/controllers"
	"jollymart/internal/repositories"
	"jollymart/internal/services"
)

var Module = fx.Provide(
	provideOrderRepository,
	provideCustomerRepository,
	provideOrderService,
	provideOrderController,
)

func provideOrderRepository(db *gorm.DB) repositories.OrderRepository {
	return repositories.NewOrderRepository(db)
}

func provideCustomerRepository(db *gorm.DB) repositories.CustomerRepository {
	return repositories.NewCustomerRepository(db)
}

func provideOrderService(
	orderRepo repositories.OrderRepository,
	customerRepo repositories.CustomerRepository,
	mail services.IMailService) services.OrderService {
	return services.NewOrderService(orderRepo, customerRepo, mail)
}

func provideOrderController(orderService services.OrderService) *controllers.OrderController {
	return controllers.NewOrderController(orderService)
}
