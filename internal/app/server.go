// Package server wires the ledger runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gavelhq/gavel/internal/api/rest"
	"github.com/gavelhq/gavel/internal/ledger/domain"
	ledgeramqp "github.com/gavelhq/gavel/internal/ledger/event/amqp"
	"github.com/gavelhq/gavel/internal/ledger/service"
	"github.com/gavelhq/gavel/internal/ledger/storage/sqlite"
	"github.com/gavelhq/gavel/internal/platform/config"
)

// shutdownTimeout caps the graceful HTTP shutdown wait.
const shutdownTimeout = 5 * time.Second

type serverEnv struct {
	DBPath   string `env:"GAVEL_DB_PATH"`
	Operator string `env:"GAVEL_OPERATOR_ACCOUNT"`
	AMQPURL  string `env:"GAVEL_AMQP_URL"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "gavel.db")
	}
	if strings.TrimSpace(cfg.Operator) == "" {
		cfg.Operator = "operator"
	}
	return cfg
}

// Server hosts the ledger HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	publisher  *ledgeramqp.Publisher
}

// New creates a configured ledger server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured ledger server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openLedgerStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	var opts []service.Option
	var publisher *ledgeramqp.Publisher
	if env.AMQPURL != "" {
		publisher, err = ledgeramqp.Dial(env.AMQPURL)
		if err != nil {
			_ = store.Close()
			_ = listener.Close()
			return nil, fmt.Errorf("dial event broker: %w", err)
		}
		opts = append(opts, service.WithPublisher(publisher))
	}

	ledger, err := service.New(service.Stores{
		Rights:   store,
		Balances: store,
		Assets:   store,
		Auctions: store,
	}, opts...)
	if err != nil {
		closeAll(listener, store, publisher)
		return nil, err
	}
	if err := ledger.Bootstrap(context.Background(), domain.Account(env.Operator)); err != nil {
		closeAll(listener, store, publisher)
		return nil, err
	}

	handler := otelhttp.NewHandler(rest.NewHandler(ledger), "gavel.http")
	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: handler},
		store:      store,
		publisher:  publisher,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a ledger server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("gavel server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Close releases ledger server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Printf("close event publisher: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close ledger store: %v", err)
		}
	}
}

func closeAll(listener net.Listener, store *sqlite.Store, publisher *ledgeramqp.Publisher) {
	if publisher != nil {
		_ = publisher.Close()
	}
	if store != nil {
		_ = store.Close()
	}
	if listener != nil {
		_ = listener.Close()
	}
}

func openLedgerStore(path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger sqlite store: %w", err)
	}
	return store, nil
}
