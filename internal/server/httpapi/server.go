// Package httpapi exposes session negotiation and token minting over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	maxUploadMemory = 32 << 20
	shutdownTimeout = 10 * time.Second
)

type HTTPServer struct {
	address string
	router  *gin.Engine
	logger  logging.Logger
}

// NewHTTPServer builds the gin engine with recovery, request logging and,
// when clientURL is set, CORS.
func NewHTTPServer(address, clientURL string, logger logging.Logger, h *Handler) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	l := logger.With("module", "http_server")

	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory
	router.Use(gin.Recovery(), RequestLogger(l))
	if clientURL != "" {
		router.Use(CORS(clientURL))
	}

	SetupRoutes(router, h)

	return &HTTPServer{address: address, router: router, logger: l}
}

// Handler returns the underlying http.Handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
