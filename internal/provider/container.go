package provider

import (
	"github.com/bestie-next/internal/authz"
	"github.com/bestie-next/internal/cache"
	"github.com/bestie-next/internal/config"
	"github.com/bestie-next/internal/logger"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/queue"
	"github.com/bestie-next/internal/repository"
	"github.com/bestie-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo       repository.AdminRepository
	ProfileRepo     repository.ProfileRepository
	BestieRepo      repository.BestieRepository
	SponsorshipRepo repository.SponsorshipRepository
	DonationRepo    repository.DonationRepository
	ReceiptRepo     repository.ReceiptRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	EmailService    *service.EmailService
	GatewaySet      *service.GatewaySet
	HistoryService  *service.HistoryService
	DebugService    *service.DebugService
	ReceiptService  *service.ReceiptService
	RecoveryService *service.RecoveryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.BestieRepo = repository.NewBestieRepository(db)
	c.SponsorshipRepo = repository.NewSponsorshipRepository(db)
	c.DonationRepo = repository.NewDonationRepository(db)
	c.ReceiptRepo = repository.NewReceiptRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	gatewaySet, err := service.NewGatewaySet(&c.Config.Stripe)
	if err != nil {
		logger.Errorw("provider_init_stripe_gateways_failed", "error", err)
		panic(err)
	}
	c.GatewaySet = gatewaySet

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.ProfileRepo)
	c.HistoryService = service.NewHistoryService(c.GatewaySet, c.SponsorshipRepo, c.BestieRepo)
	c.DebugService = service.NewDebugService(c.GatewaySet, c.ProfileRepo, c.SponsorshipRepo, c.DonationRepo, c.ReceiptRepo, c.BestieRepo)
	c.ReceiptService = service.NewReceiptService(c.ReceiptRepo, c.QueueClient, c.EmailService, c.Config.Org)
	c.RecoveryService = service.NewRecoveryService(c.GatewaySet, c.ProfileRepo, c.DonationRepo, c.ReceiptService)
}
