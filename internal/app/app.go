package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/config"
	"github.com/aqui-app/aqui-api/internal/media"
	"github.com/aqui-app/aqui-api/internal/repository/postgres"
	"github.com/aqui-app/aqui-api/internal/service"
	transporthttp "github.com/aqui-app/aqui-api/internal/transport/http"
	"github.com/aqui-app/aqui-api/internal/util"
)

// Services is the fully wired service layer shared by the HTTP server and
// the one-shot commands.
type Services struct {
	Auth          *service.AuthService
	Vendors       *service.VendorService
	LiveSessions  *service.LiveSessionService
	Map           *service.MapService
	Sweeper       *service.SessionSweeper
	Reviews       *service.ReviewService
	Favorites     *service.FavoriteService
	Notifications *service.NotificationService
	Settings      *service.PlatformSettingsService
}

type App struct {
	cfg      config.Config
	log      logrus.FieldLogger
	infra    *Infra
	services *Services
	echo     *echo.Echo
}

func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*App, error) {
	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	services := buildServices(cfg, infra, log)

	e := transporthttp.NewRouter(cfg.AllowOrigins, log)
	transporthttp.RegisterSwagger(e)
	transporthttp.RegisterAuth(e, services.Auth)
	transporthttp.RegisterVendors(e, services.Auth, services.Vendors)
	transporthttp.RegisterLiveSessions(e, services.Auth, services.LiveSessions)
	transporthttp.RegisterMap(e, services.Map)
	transporthttp.RegisterReviews(e, services.Auth, services.Reviews)
	transporthttp.RegisterFavorites(e, services.Auth, services.Favorites)
	transporthttp.RegisterNotifications(e, services.Auth, services.Notifications)
	transporthttp.RegisterAdmin(e, services.Auth, services.Vendors, services.LiveSessions, services.Settings)
	transporthttp.RegisterInternal(e, cfg.CronSecret, services.Sweeper)

	return &App{cfg: cfg, log: log, infra: infra, services: services, echo: e}, nil
}

func buildServices(cfg config.Config, infra *Infra, log logrus.FieldLogger) *Services {
	users := postgres.NewUserRepo(infra.DB)
	roles := postgres.NewRoleRepo(infra.DB)
	authSessions := postgres.NewSessionRepo(infra.DB)
	vendors := postgres.NewVendorRepo(infra.DB)
	liveSessions := postgres.NewLiveSessionRepo(infra.DB)
	settings := postgres.NewPlatformSettingsRepo(infra.DB)
	reviews := postgres.NewReviewRepo(infra.DB)
	favorites := postgres.NewFavoriteRepo(infra.DB)
	notifications := postgres.NewNotificationRepo(infra.DB)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionDuration())
	auth := service.NewAuthService(users, roles, authSessions, jwtManager, cfg.GoogleAudience)
	notifier := service.NewNotificationService(notifications, favorites)

	live := service.NewLiveSessionService(service.LiveSessionDeps{
		Vendors:   vendors,
		Sessions:  liveSessions,
		Settings:  settings,
		Cache:     infra.Cache,
		Publisher: infra.Publisher,
		Notifier:  notifier,
		Logger:    log.WithField("component", "live_sessions"),
	})

	vendorService := service.NewVendorService(service.VendorDeps{
		Vendors:    vendors,
		Sessions:   liveSessions,
		Settings:   settings,
		Reviews:    reviews,
		Favorites:  favorites,
		Users:      users,
		Storage:    infra.Storage,
		Images:     media.NewInspector(cfg.VendorImageMaxBytes, 0),
		Mailer:     infra.Mailer,
		Roles:      auth,
		LiveEnder:  live,
		Logger:     log.WithField("component", "vendors"),
		Bucket:     cfg.MinIOBucketVendors,
		PublicBase: cfg.MinIOPublicURL,
	})

	return &Services{
		Auth:          auth,
		Vendors:       vendorService,
		LiveSessions:  live,
		Map:           service.NewMapService(liveSessions, infra.Cache, log.WithField("component", "map")),
		Sweeper:       service.NewSessionSweeper(liveSessions, infra.Cache, infra.Publisher, log.WithField("component", "sweeper")),
		Reviews:       service.NewReviewService(reviews, vendors),
		Favorites:     service.NewFavoriteService(favorites, vendors),
		Notifications: notifier,
		Settings:      service.NewPlatformSettingsService(settings, log.WithField("component", "platform_settings")),
	}
}

func (a *App) Services() *Services {
	return a.services
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	addr := ":" + a.cfg.Port
	a.log.WithField("addr", addr).Info("http server listening")
	if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases infrastructure without touching the HTTP server; one-shot
// commands use it.
func (a *App) Close() error {
	return a.infra.Close()
}

// Migrate applies the schema without building the rest of the application.
func Migrate(ctx context.Context, cfg config.Config) error {
	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return postgres.Migrate(ctx, db)
}
