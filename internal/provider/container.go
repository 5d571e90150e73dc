package provider

import (
	"github.com/giftvault/internal/authz"
	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo            repository.UserRepository
	RefreshTokenRepo    repository.RefreshTokenRepository
	ResetCodeRepo       repository.PasswordResetCodeRepository
	MerchantProfileRepo repository.MerchantProfileRepository
	GiftCardRepo        repository.GiftCardRepository
	PurchasedCardRepo   repository.PurchasedGiftCardRepository
	RedemptionRepo      repository.RedemptionRepository
	NotificationRepo    repository.NotificationRepository
	PreferenceRepo      repository.NotificationPreferenceRepository
	ActivityLogRepo     repository.ActivityLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	MerchantService     *service.MerchantService
	GiftCardService     *service.GiftCardService
	PurchaseService     *service.PurchaseService
	NotificationService *service.NotificationService
	ActivityLogService  *service.ActivityLogService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
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
	c.UserRepo = repository.NewUserRepository(db)
	c.RefreshTokenRepo = repository.NewRefreshTokenRepository(db)
	c.ResetCodeRepo = repository.NewPasswordResetCodeRepository(db)
	c.MerchantProfileRepo = repository.NewMerchantProfileRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.PurchasedCardRepo = repository.NewPurchasedGiftCardRepository(db)
	c.RedemptionRepo = repository.NewRedemptionRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.PreferenceRepo = repository.NewNotificationPreferenceRepository(db)
	c.ActivityLogRepo = repository.NewActivityLogRepository(db)
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

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)

	c.NotificationService = service.NewNotificationService(
		c.NotificationRepo,
		c.PreferenceRepo,
		c.UserRepo,
		c.EmailService,
		c.QueueClient,
	)
	c.AuthService = service.NewAuthService(
		c.Config,
		c.UserRepo,
		c.MerchantProfileRepo,
		c.RefreshTokenRepo,
		c.ResetCodeRepo,
		c.EmailService,
		c.QueueClient,
		service.NewGoogleVerifier(c.Config.OAuth.Google),
	)
	c.MerchantService = service.NewMerchantService(
		c.MerchantProfileRepo,
		c.UserRepo,
		c.RefreshTokenRepo,
		c.GiftCardRepo,
		c.NotificationService,
	)
	c.GiftCardService = service.NewGiftCardService(c.GiftCardRepo, c.MerchantProfileRepo)
	c.PurchaseService = service.NewPurchaseService(
		models.DB,
		c.PurchasedCardRepo,
		c.GiftCardRepo,
		c.MerchantProfileRepo,
		c.RedemptionRepo,
		c.NotificationService,
		c.QueueClient,
		c.EmailService,
	)
	c.ActivityLogService = service.NewActivityLogService(c.ActivityLogRepo)
}
