//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	appcheckout "github.com/xiebiao/bookshop/internal/application/checkout"
	appdelivery "github.com/xiebiao/bookshop/internal/application/delivery"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	apppayment "github.com/xiebiao/bookshop/internal/application/payment"
	appproduct "github.com/xiebiao/bookshop/internal/application/product"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	appwarehouse "github.com/xiebiao/bookshop/internal/application/warehouse"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/payment"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/gateway/paypal"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// infrastructureSet 基础设施层:配置、数据库、Redis
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewOrderRepository,
	mysql.NewPaymentRepository,
	mysql.NewLedgerRepository,
	mysql.NewShipmentRepository,
	mysql.NewTxManager,
	wire.Bind(new(appproduct.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apppayment.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appwarehouse.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appdelivery.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层
var domainSet = wire.NewSet(
	user.NewService,
	inventory.NewAdjuster,
	cart.NewSnapshotter,
)

// gatewaySet 外部网关与消息队列
var gatewaySet = wire.NewSet(
	provideGateway,
	provideEventPublisher,
	wire.Bind(new(apppayment.EventPublisher), new(*mq.Publisher)),
	wire.Bind(new(appwarehouse.EventPublisher), new(*mq.Publisher)),
)

// applicationSet 应用层
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appproduct.NewService,
	appcart.NewService,
	apppayment.NewCoordinator,
	appcheckout.NewOrchestrator,
	wire.Bind(new(appcheckout.PaymentCoordinator), new(*apppayment.Coordinator)),
	apporder.NewService,
	appwarehouse.NewService,
	appdelivery.NewService,
)

// middlewareSet 中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideCartStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewProductHandler,
	handler.NewCartHandler,
	handler.NewCheckoutHandler,
	handler.NewPaymentHandler,
	handler.NewOrderHandler,
	handler.NewWarehouseHandler,
	handler.NewDeliveryHandler,
)

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

func provideCartStore(cfg *config.Config, client *goredis.Client) cart.Store {
	return redis.NewCartStore(client, cfg.Cart.GuestTTL, cfg.Cart.UserTTL)
}

func provideGateway(cfg *config.Config) payment.Gateway {
	return paypal.NewClient(cfg.PayPal)
}

func provideEventPublisher(cfg *config.Config) (*mq.Publisher, error) {
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	paymentHandler *handler.PaymentHandler,
	orderHandler *handler.OrderHandler,
	warehouseHandler *handler.WarehouseHandler,
	deliveryHandler *handler.DeliveryHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, &handlers{
		user:      userHandler,
		product:   productHandler,
		cart:      cartHandler,
		checkout:  checkoutHandler,
		payment:   paymentHandler,
		order:     orderHandler,
		warehouse: warehouseHandler,
		delivery:  deliveryHandler,
		auth:      authMiddleware,
	})

	return r
}

// InitializeApp 组装整个应用(wire生成wire_gen.go)
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		gatewaySet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
