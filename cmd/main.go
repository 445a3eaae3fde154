package main

import (
	"net/http"
	"os"
	"time"

	"github.com/kurromiii/E-Commerce/api/handler"
	apiMiddleware "github.com/kurromiii/E-Commerce/api/middleware"
	"github.com/kurromiii/E-Commerce/api/routes"
	"github.com/kurromiii/E-Commerce/config"
	"github.com/kurromiii/E-Commerce/internal/dto"
	"github.com/kurromiii/E-Commerce/internal/repository"
	"github.com/kurromiii/E-Commerce/internal/service"
	"github.com/kurromiii/E-Commerce/internal/utils"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	db := config.ConnectionDb(cfg.DatabaseURL)

	codec := utils.TokenCodec{
		Secret:        []byte(cfg.JWTSecret),
		Issuer:        cfg.JWTIssuer,
		AuthTokenTTL:  cfg.AuthTokenTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	}

	var emailSender service.EmailSender
	switch cfg.Email.Provider {
	case "resend":
		emailSender = service.NewResendEmailSender(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.AppBaseURL)
	default:
		emailSender = service.NewSMTPEmailSender(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUsername,
			cfg.Email.SMTPPassword,
			cfg.Email.From,
			cfg.Email.AppBaseURL,
		)
	}

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	uow := repository.NewUnitOfWork(db)
	ledger := service.NewVerificationLedger(codec, service.RealClock{}, cfg.ResendWindow)

	accountService := service.NewAccountService(
		userRepo,
		auditRepo,
		uow,
		ledger,
		emailSender,
		service.BcryptPasswordHasher{},
		codec,
	)

	accountHandler := handler.NewAccountHandler(accountService, dto.NewValidator())

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Codec: codec, Users: userRepo}
	router := routes.NewRouter(app, accountHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
