package provider

import (
	"github.com/kharido-next/internal/cache"
	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/queue"
	"github.com/kharido-next/internal/repository"
	"github.com/kharido-next/internal/service"
)

// Container 汇集全部仓储与服务的依赖容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	CartRepo        repository.CartRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	WalletRepo      repository.WalletRepository
	OrderRepo       repository.OrderRepository
	PaymentRepo     repository.PaymentRepository

	// Services
	UserAuthService *service.UserAuthService
	PricingService  *service.PricingService
	CouponService   *service.CouponService
	WalletService   *service.WalletService
	Gateway         service.PaymentGateway
	CheckoutService *service.CheckoutService
}

// NewContainer 按依赖顺序装配容器
func NewContainer(cfg *config.Config) *Container {
	// 缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 仓储层
	c.initRepositories()

	// 服务层
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.PricingService = service.NewPricingService(c.Config.Checkout.ReturnChargeFee)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.WalletService = service.NewWalletService(c.WalletRepo)

	gateway, err := service.NewRazorpayGateway(c.Config.Razorpay)
	if err != nil {
		// 网关未配置时 cod 与全额抵扣流程照常可用
		logger.Warnw("provider_init_gateway_failed", "error", err)
	} else {
		c.Gateway = gateway
	}

	c.CheckoutService = service.NewCheckoutService(
		c.Config,
		c.PricingService,
		c.CouponService,
		c.WalletService,
		c.Gateway,
		c.CartRepo,
		c.OrderRepo,
		c.PaymentRepo,
		c.CouponRepo,
		c.CouponUsageRepo,
		c.WalletRepo,
		c.QueueClient,
	)
}
