// Package web wires the Fiber application: middleware, handler services and
// the server lifecycle.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/web/handler"
	bodyhandler "github.com/inkpress/inkpress/internal/web/handler/body"
	"github.com/inkpress/inkpress/internal/web/handler/login"
	"github.com/inkpress/inkpress/internal/web/handler/logout"
	posthandler "github.com/inkpress/inkpress/internal/web/handler/post"
	"github.com/inkpress/inkpress/internal/web/handler/register"
	rolehandler "github.com/inkpress/inkpress/internal/web/handler/role"
	requesthandler "github.com/inkpress/inkpress/internal/web/handler/rolerequest"
	userhandler "github.com/inkpress/inkpress/internal/web/handler/user"
	"github.com/inkpress/inkpress/internal/web/middleware/principal"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// resolve the caller into fiber.Locals (before any handler)
	app.Use(principal.Middleware(db))

	// init web service
	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}

	service.alive.Store(true)

	// init handlers (they register their own routes and permission checks)
	handlers := []struct {
		name    string
		service handler.Service
	}{
		{"register", &register.Handler},
		{"login", &login.Handler},
		{"logout", &logout.Handler},
		{"user", &userhandler.Handler},
		{"role", &rolehandler.Handler},
		{"role-request", &requesthandler.Handler},
		{"post", &posthandler.Handler},
		{"body", &bodyhandler.Handler},
	}

	for _, h := range handlers {
		if err := h.service.Init(app, cfg, db); err != nil {
			log.Fatal().Err(err).Msgf("failed to init %s handler", h.name)
		}
	}

	// liveness endpoint for load balancers
	app.Get("/health", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendStatus(fiber.StatusOK)
	})

	return service
}
