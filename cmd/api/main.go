package main

import (
	"context"
	"fmt"
	"time"

	common_api "go-negotiation/internal/common/api"
	"go-negotiation/internal/config"
	"go-negotiation/internal/database"
	"go-negotiation/internal/features/approval"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/contract"
	"go-negotiation/internal/features/extemporaneous"
	"go-negotiation/internal/features/identity"
	"go-negotiation/internal/features/negotiation"
	"go-negotiation/internal/features/notification"
	"go-negotiation/internal/features/scheduling"
	"go-negotiation/internal/features/system"
	"go-negotiation/internal/features/verification"
	"go-negotiation/internal/logger"
	"go-negotiation/internal/middleware"
	"go-negotiation/pkg/utils"

	_ "go-negotiation/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			} else {
				log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	log.Info("registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		log.Debug("setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("http server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

type indexed interface {
	EnsureIndexes(ctx context.Context) error
}

type IndexParams struct {
	fx.In

	Negotiations   negotiation.NegotiationRepository
	Contracts      contract.ContractRepository
	Extemporaneous extemporaneous.ExtemporaneousRepository
	Scheduling     scheduling.SchedulingRepository
	Verifications  verification.VerificationRepository
}

// InitializeIndexes creates the indexes before the server accepts traffic.
// The item ownership index is a correctness guard, so failure aborts startup.
func InitializeIndexes(lc fx.Lifecycle, p IndexParams, log *zap.Logger) {
	repos := map[string]indexed{
		"negotiations":                p.Negotiations,
		"contracts":                   p.Contracts,
		"extemporaneous_negotiations": p.Extemporaneous,
		"scheduling_exceptions":       p.Scheduling,
		"value_verifications":         p.Verifications,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			for name, repo := range repos {
				if err := repo.EnsureIndexes(ctx); err != nil {
					return fmt.Errorf("ensure %s indexes: %w", name, err)
				}
				log.Debug("indexes ready", zap.String("collection", name))
			}
			return nil
		},
	})
}

// StartNotifications runs the notification worker and its delivery schedule.
func StartNotifications(lc fx.Lifecycle, svc notification.NotificationService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			return svc.Stop()
		},
	})
}

// @title           Negotiation API
// @version         1.0
// @description     Provider negotiations, contract approval and the exception workflows around them.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,
			database.NewTransactor,

			// Repositories
			audit.NewAuditRepository,
			notification.NewNotificationRepository,
			negotiation.NewNegotiationRepository,
			contract.NewContractRepository,
			extemporaneous.NewExtemporaneousRepository,
			scheduling.NewSchedulingRepository,
			verification.NewVerificationRepository,

			// Services
			identity.NewRoleChecker,
			notification.NewHub,
			audit.NewAuditService,
			notification.NewNotificationService,
			contract.NewDocumentGenerator,
			contract.NewContractService,
			negotiation.NewNegotiationService,
			extemporaneous.NewExtemporaneousService,
			scheduling.NewSchedulingService,
			verification.NewVerificationService,

			// Interface adapters
			func(r *identity.RoleChecker) approval.RoleChecker { return r },
			func(r *identity.RoleChecker) negotiation.RoleChecker { return r },
			func(r *identity.RoleChecker) verification.RoleChecker { return r },
			func(s notification.NotificationService) notification.Notifier { return s },
			func(s contract.ContractService) negotiation.ContractHandoff { return s },

			// Controllers
			identity.NewIdentityController,
			audit.NewAuditController,
			notification.NewNotificationController,
			negotiation.NewNegotiationController,
			contract.NewContractController,
			extemporaneous.NewExtemporaneousController,
			scheduling.NewSchedulingController,
			verification.NewVerificationController,

			// API routes
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(identity.NewIdentityApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(negotiation.NewNegotiationApi),
			AsRoute(contract.NewContractApi),
			AsRoute(extemporaneous.NewExtemporaneousApi),
			AsRoute(scheduling.NewSchedulingApi),
			AsRoute(verification.NewVerificationApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			InitializeIndexes,
			StartNotifications,
			RegisterAllRoutesWithAnnotation,
			StartServer,
		),
	)

	app.Run()
}
