package router

import (
	"net/http"

	ansvc "chitfund-backend/internal/application/analytics"
	authsvc "chitfund-backend/internal/application/auth"
	listsvc "chitfund-backend/internal/application/listings"
	memsvc "chitfund-backend/internal/application/members"
	"chitfund-backend/internal/config"
	"chitfund-backend/internal/infrastructure/database"
	anhandler "chitfund-backend/internal/interfaces/handlers/analytics"
	authhandler "chitfund-backend/internal/interfaces/handlers/auth"
	healthhandler "chitfund-backend/internal/interfaces/handlers/health"
	listhandler "chitfund-backend/internal/interfaces/handlers/listings"
	memhandler "chitfund-backend/internal/interfaces/handlers/members"
	"chitfund-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
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

// CreateApp wires middleware, services, and routes. User routes and listing
// routes are both mounted at the root, which existing clients depend on.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigin: cfg.FrontendURL,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	} else {
		log.Warn().Msg("REDIS_URL not set, health stats disabled")
	}
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		FrontendURL:    cfg.FrontendURL,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		as := &authsvc.Service{DB: db, Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
		ah := &authhandler.Handlers{Service: as, Secure: cfg.Env == "production"}
		app.Post("/register", ah.Register)
		app.Post("/login", ah.Login)
		app.Post("/logout", ah.Logout)
		app.Get("/profile", middleware.RequireAuth(as), ah.Profile)

		ms := &memsvc.Service{DB: db, QueryTimeout: cfg.QueryTimeout}
		ls := &listsvc.Service{DB: db, QueryTimeout: cfg.QueryTimeout}
		dash := &ansvc.Service{DB: db, Members: ms, QueryTimeout: cfg.QueryTimeout}

		lh := &listhandler.Handlers{Service: ls}
		mh := &memhandler.Handlers{Service: ms}
		anh := &anhandler.Handlers{Service: dash}

		authed := app.Group("/", middleware.RequireAuth(as))
		authed.Get("/view", lh.ViewAll)
		authed.Post("/create", lh.Create)
		authed.Get("/view/:id", lh.ViewOne)
		authed.Get("/archived", lh.ViewArchived)
		authed.Put("/update/:id", lh.UpdateBid)
		authed.Delete("/delete/:id", lh.Delete)
		authed.Get("/members", mh.ViewWithListings)
		authed.Post("/members", mh.Create)
		authed.Get("/members/:id", mh.ViewOne)
		authed.Get("/analytics", anh.Dashboard)
	}

	return app, db, rdb, nil
}

// Handler adapts the Fiber app to net/http for serverless hosting.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
