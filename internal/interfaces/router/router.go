package router

import (
	"net/http"

	authsvc "sharesreg-backend/internal/application/auth"
	companysvc "sharesreg-backend/internal/application/companies"
	"sharesreg-backend/internal/application/ledger"
	"sharesreg-backend/internal/config"
	"sharesreg-backend/internal/infrastructure/database"
	authhandler "sharesreg-backend/internal/interfaces/handlers/auth"
	companyhandler "sharesreg-backend/internal/interfaces/handlers/companies"
	healthhandler "sharesreg-backend/internal/interfaces/handlers/health"
	shareshandler "sharesreg-backend/internal/interfaces/handlers/sharesmembers"
	"sharesreg-backend/internal/middleware"
	"sharesreg-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp opens the database and Redis from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return NewApp(cfg, db, rdb), db, rdb, nil
}

// NewApp wires middleware and routes over existing connections. db may be nil, in which case
// only health and auth routes are mounted and login answers 500.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.SessionWithClient(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db == nil {
		return app
	}

	// Companies (client records)
	cs := &companysvc.Service{DB: db}
	ch := &companyhandler.Handlers{Service: cs}
	cg := app.Group("/api/v1/companies", middleware.RequireAuth())
	cg.Post("/create-company", middleware.AuthorizePermission(constants.ManageClients), ch.CreateCompany)
	cg.Get("/view-companies", middleware.AuthorizePermission(constants.ViewData), ch.ViewCompanies)
	cg.Get("/view-company/:company_id", middleware.AuthorizePermission(constants.ViewData), ch.ViewCompany)

	// Shares & Members
	ls := &ledger.Service{
		Store:     &database.LedgerStore{DB: db},
		Companies: cs,
	}
	sh := &shareshandler.Handlers{Service: ls}
	sg := app.Group("/api/v1/shares-members/:company_id", middleware.RequireAuth())
	sg.Get("/ownership-model", middleware.AuthorizePermission(constants.ViewData), sh.OwnershipModel)
	sg.Get("/view-holdings", middleware.AuthorizePermission(constants.ViewData), sh.ViewHoldings)
	sg.Post("/add-holding", middleware.AuthorizePermission(constants.IssueShares), sh.AddHolding)
	sg.Get("/view-history/:holding_id", middleware.AuthorizePermission(constants.ViewData), sh.ViewHistory)
	sg.Post("/transfer-holding/:holding_id", middleware.AuthorizePermission(constants.TransferShares), sh.TransferHolding)
	sg.Get("/download-certificate/:holding_id", middleware.AuthorizePermission(constants.ViewData), sh.DownloadCertificate)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
