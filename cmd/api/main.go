package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/gateway/paypal"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

func main() {
	// 1. 配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 可观测性
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	// 3. 基础设施
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 消息队列不可用时降级运行:事件发布是best-effort
	var eventPub *mq.Publisher
	if cfg.MQ.URL != "" {
		eventPub, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Printf("连接消息队列失败,事件发布降级为no-op: %v", err)
			eventPub = nil
		} else {
			defer eventPub.Close()
		}
	}

	// 4. 仓储与网关
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	ledgerRepo := mysql.NewLedgerRepository(db)
	shipmentRepo := mysql.NewShipmentRepository(db)
	txManager := mysql.NewTxManager(db)

	sessionStore := redis.NewSessionStore(redisClient)
	cartStore := redis.NewCartStore(redisClient, cfg.Cart.GuestTTL, cfg.Cart.UserTTL)

	gateway := paypal.NewClient(cfg.PayPal)

	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 5. 领域服务
	userService := user.NewService(userRepo)
	adjuster := inventory.NewAdjuster(productRepo, ledgerRepo)
	snapshotter := cart.NewSnapshotter(cartStore, productRepo)

	// 6. 应用层
	var paymentEvents apppayment.EventPublisher
	var warehouseEvents appwarehouse.EventPublisher
	if eventPub != nil {
		paymentEvents = eventPub
		warehouseEvents = eventPub
	}

	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	productService := appproduct.NewService(productRepo, adjuster, txManager)
	cartService := appcart.NewService(cartStore, productRepo)
	coordinator := apppayment.NewCoordinator(orderRepo, paymentRepo, adjuster, gateway, txManager, paymentEvents)
	orchestrator := appcheckout.NewOrchestrator(snapshotter, cartStore, orderRepo, coordinator)
	orderService := apporder.NewService(orderRepo, paymentRepo, adjuster, txManager)
	warehouseService := appwarehouse.NewService(productRepo, ledgerRepo, adjuster, orderRepo, shipmentRepo, txManager, warehouseEvents)
	deliveryService := appdelivery.NewService(orderRepo, shipmentRepo, txManager)

	// 7. 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	productHandler := handler.NewProductHandler(productService)
	cartHandler := handler.NewCartHandler(cartService)
	checkoutHandler := handler.NewCheckoutHandler(orchestrator)
	paymentHandler := handler.NewPaymentHandler(coordinator)
	orderHandler := handler.NewOrderHandler(orderService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. HTTP服务
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

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("服务启动: http://localhost%s (mode=%s)", addr, cfg.Server.Mode)
	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// handlers 路由注册所需的全部处理器
type handlers struct {
	user      *handler.UserHandler
	product   *handler.ProductHandler
	cart      *handler.CartHandler
	checkout  *handler.CheckoutHandler
	payment   *handler.PaymentHandler
	order     *handler.OrderHandler
	warehouse *handler.WarehouseHandler
	delivery  *handler.DeliveryHandler
	auth      *middleware.AuthMiddleware
}

// registerRoutes 注册路由
func registerRoutes(r *gin.Engine, h *handlers) {
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户
		users := v1.Group("/users")
		{
			users.POST("/register", h.user.Register)
			users.POST("/login", h.user.Login)
			users.POST("/logout", h.auth.RequireAuth(), h.user.Logout)
		}

		// 商品:浏览公开,管理需要admin
		products := v1.Group("/products")
		{
			products.GET("", h.product.List)
			products.GET("/:id", h.product.Get)

			admin := products.Group("")
			admin.Use(h.auth.RequireAuth(), h.auth.RequireRole(user.RoleAdmin))
			{
				admin.POST("", h.product.Publish)
				admin.PUT("/:id", h.product.Update)
				admin.PUT("/:id/price", h.product.UpdatePrice)
				admin.DELETE("/:id", h.product.Deactivate)
			}
		}

		// 购物车与结账:登录用户或携带游客令牌
		cartGroup := v1.Group("/cart")
		cartGroup.Use(h.auth.OptionalAuth())
		{
			cartGroup.GET("", h.cart.Get)
			cartGroup.DELETE("", h.cart.Clear)
			cartGroup.POST("/items", h.cart.AddItem)
			cartGroup.PUT("/items/:productId", h.cart.UpdateItem)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(h.auth.OptionalAuth())
		{
			checkout.POST("", h.checkout.Start)
			checkout.POST("/complete", h.checkout.Complete)
		}

		// 支付:webhook由网关调用,对账是运营操作
		payments := v1.Group("/payments")
		{
			payments.POST("/webhook", h.payment.Webhook)
			payments.POST("/reconcile/:orderId",
				h.auth.RequireAuth(), h.auth.RequireRole(user.RoleAdmin), h.payment.Reconcile)
		}

		// 订单
		orders := v1.Group("/orders")
		{
			orders.GET("/guest/:orderNo", h.order.GuestLookup)

			mine := orders.Group("")
			mine.Use(h.auth.RequireAuth())
			{
				mine.GET("", h.order.List)
				mine.GET("/:id", h.order.Get)
				mine.POST("/:id/cancel", h.order.Cancel)
				mine.POST("/:id/refund", h.auth.RequireRole(user.RoleAdmin), h.order.Refund)
			}
		}

		// 仓库与配送(warehouse角色,admin隐含)
		warehouse := v1.Group("/warehouse")
		warehouse.Use(h.auth.RequireAuth(), h.auth.RequireRole(user.RoleWarehouse))
		{
			warehouse.POST("/stock/adjust", h.warehouse.AdjustStock)
			warehouse.GET("/ledger", h.warehouse.RecentLedger)
			warehouse.GET("/ledger/:productId", h.warehouse.Ledger)
			warehouse.GET("/low-stock", h.warehouse.LowStock)
			warehouse.GET("/packable", h.warehouse.PackableOrders)
			warehouse.POST("/pack/:orderId", h.warehouse.Pack)
		}

		delivery := v1.Group("/delivery")
		delivery.Use(h.auth.RequireAuth(), h.auth.RequireRole(user.RoleWarehouse))
		{
			delivery.POST("/ship/:orderId", h.delivery.Ship)
			delivery.POST("/deliver/:orderId", h.delivery.Deliver)
			delivery.GET("/track/:orderId", h.delivery.Track)
			delivery.GET("/board", h.delivery.Board)
		}
	}
}
