package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/wahid-dev1/semina/internal/api/http"
	"github.com/wahid-dev1/semina/internal/api/http/handlers"
	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/events"
	"github.com/wahid-dev1/semina/internal/observability"
	"github.com/wahid-dev1/semina/internal/persistence"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
	"github.com/wahid-dev1/semina/internal/worker"
)

func main() {
	var (
		envFiles      []string
		migrateOnly   bool
		skipBootstrap bool
		quiet         bool
	)
	flagSet := pflag.NewFlagSet("semina-api", pflag.ExitOnError)
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "apply database migrations and exit")
	flagSet.BoolVar(&skipBootstrap, "skip-bootstrap", false, "do not seed the initial company and super admin")
	flagSet.BoolVarP(&quiet, "quiet", "q", false, "suppress the startup banner")
	_ = flagSet.Parse(os.Args[1:])

	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !quiet {
		displayAppname(cfg.App.Name)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations || migrateOnly {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if migrateOnly {
		logger.Info("migrations applied, exiting")
		return
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	txManager := persistence.NewTxManager(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	usageRepo := repository.NewServiceUsageRepository(pool)
	historyRepo := repository.NewMedicalHistoryRepository(pool)
	qrRepo := repository.NewQRCodeRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	sessionCache := repository.NewRedisSessionCache(redis.Client, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, logger)
		logger.Info("audit stream enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.AuditTopic))
	}
	defer publisher.Close() //nolint:errcheck
	worker.StartAuditStreamWorker(service.NewAuditStreamService(dispatcher, publisher, logger))

	auditService := service.NewAuditService(service.AuditDependencies{
		AuditRepo:  auditRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		EmployeeRepo: employeeRepo,
		CustomerRepo: customerRepo,
		SessionRepo:  sessionRepo,
		SessionCache: sessionCache,
		QRCodeRepo:   qrRepo,
		TxManager:    txManager,
		Audit:        auditService,
		Metrics:      metrics,
		Logger:       logger,
	})
	ledgerService := service.NewLedgerService(service.LedgerDependencies{
		ProductRepo:      productRepo,
		ServiceRepo:      serviceRepo,
		OrderRepo:        orderRepo,
		ServiceUsageRepo: usageRepo,
		TxManager:        txManager,
		Audit:            auditService,
		Metrics:          metrics,
		Logger:           logger,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:    orderRepo,
		CustomerRepo: customerRepo,
		ProductRepo:  productRepo,
		ServiceRepo:  serviceRepo,
		Audit:        auditService,
		Logger:       logger,
	})
	customerService := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: customerRepo,
		BranchRepo:   branchRepo,
		OrderRepo:    orderRepo,
		Audit:        auditService,
	})
	employeeService := service.NewEmployeeService(service.EmployeeDependencies{
		EmployeeRepo: employeeRepo,
		BranchRepo:   branchRepo,
		OrderRepo:    orderRepo,
		Hasher:       authService.Hasher(),
		Audit:        auditService,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		ServiceRepo: serviceRepo,
		BranchRepo:  branchRepo,
		OrderRepo:   orderRepo,
		TxManager:   txManager,
		Audit:       auditService,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		ServiceRepo: serviceRepo,
		BranchRepo:  branchRepo,
		OrderRepo:   orderRepo,
		Audit:       auditService,
	})
	tenantService := service.NewTenantService(service.TenantDependencies{
		CompanyRepo: companyRepo,
		BranchRepo:  branchRepo,
		Audit:       auditService,
	})
	subscriptionService := service.NewSubscriptionService(service.SubscriptionDependencies{
		SubscriptionRepo: subscriptionRepo,
		CompanyRepo:      companyRepo,
		BranchRepo:       branchRepo,
		ProductRepo:      productRepo,
		TxManager:        txManager,
		Audit:            auditService,
	})
	medicalService := service.NewMedicalFormService(service.MedicalFormDependencies{
		CustomerRepo:       customerRepo,
		BranchRepo:         branchRepo,
		MedicalHistoryRepo: historyRepo,
		Auth:               authService,
		TxManager:          txManager,
		Audit:              auditService,
	})

	if !skipBootstrap {
		service.NewBootstrapper(cfg.Bootstrap, service.BootstrapDependencies{
			CompanyRepo:  companyRepo,
			BranchRepo:   branchRepo,
			EmployeeRepo: employeeRepo,
			Hasher:       authService.Hasher(),
			Logger:       logger,
		}).Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.App.RequestTimeout() + 5*time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Tenants:        handlers.NewTenantHandler(tenantService),
		Employees:      handlers.NewEmployeeHandler(employeeService),
		Customers:      handlers.NewCustomerHandler(customerService, authService, medicalService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Products:       handlers.NewProductHandler(productService, ledgerService),
		Orders:         handlers.NewOrderHandler(orderService, ledgerService),
		Audit:          handlers.NewAuditHandler(auditService),
		MedicalForm:    handlers.NewMedicalFormHandler(medicalService),
		Subscriptions:  handlers.NewSubscriptionHandler(subscriptionService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Metrics:        metrics,
		RateLimit:      cfg.RateLimit,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

func displayAppname(appname string) {
	banner := figure.NewFigure(appname, "cybermedium", true)
	banner.Print()
	fmt.Println()
}
