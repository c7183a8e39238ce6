package rest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/timeouts"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/app"
)

// Server runs the HTTP API and the acknowledgment poller under one
// lifecycle: cancel the context and both wind down.
type Server struct {
	addr    string
	handler *Handler
	poller  *app.AckPoller
}

// NewServer creates the submission engine server.
func NewServer(addr string, service *app.Service) *Server {
	return &Server{
		addr:    addr,
		handler: NewHandler(service),
		poller:  app.NewAckPoller(service),
	}
}

// Run serves until the context is canceled, then shuts down gracefully
// within the shared shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.handler.Register(mux)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("listening on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return s.poller.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
