package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pratham-srivastava-07/Nexus/internal/app/dispatcher"
	"github.com/pratham-srivastava-07/Nexus/internal/app/server/handlers"
	"github.com/pratham-srivastava-07/Nexus/internal/core/services"
	"github.com/pratham-srivastava-07/Nexus/pkg/middleware"
)

type Server struct {
	log       *slog.Logger
	router    *mux.Router
	addr      string
	name      string
	wsHandler *handlers.WSHandler
	tokenSvc  *services.TokenService
	// secret empty disables the bearer check on /ws.
	secret string
}

func NewServer(
	log *slog.Logger,
	name, addr, secret string,
	d *dispatcher.Dispatcher,
	tokenSvc *services.TokenService,
) *Server {
	s := &Server{
		log:       log,
		router:    mux.NewRouter(),
		addr:      addr,
		name:      name,
		wsHandler: handlers.NewWSHandler(d),
		tokenSvc:  tokenSvc,
		secret:    secret,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestLogger(s.log))
	s.router.Use(middleware.TracerMiddleware(s.name))

	s.router.HandleFunc("/health", handlers.HandleHealth).Methods(http.MethodGet)

	var wsRoute http.Handler = http.HandlerFunc(s.wsHandler.Handler)
	if s.secret != "" {
		wsRoute = middleware.AuthMiddleware(s.tokenSvc)(wsRoute)
	} else {
		s.log.Warn("server - JWT secret not set, /ws is unauthenticated")
	}
	s.router.Handle("/ws", wsRoute)
}

// Start serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server - listening", slog.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server - shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
