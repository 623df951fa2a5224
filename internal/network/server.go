package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/session"
)

// Config holds transport settings
type Config struct {
	Host           string
	Port           int
	SendBufferSize int
	WriteTimeout   time.Duration
}

// DefaultConfig returns the default listener settings
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           9009,
		SendBufferSize: 64,
		WriteTimeout:   10 * time.Second,
	}
}

// Address returns the host:port the server listens on
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server accepts game clients over TCP, one goroutine per connection
type Server struct {
	cfg    Config
	coord  *session.Coordinator
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a TCP game server
func NewServer(cfg Config, coord *session.Coordinator, logger *slog.Logger) *Server {
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = DefaultConfig().SendBufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Server{
		cfg:    cfg,
		coord:  coord,
		logger: logger.With(slog.String("component", "tcp")),
	}
}

// Listen binds the listening socket
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address(), err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the context is cancelled or Close is
// called. It returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, nc)
		}()
	}
}

// Close stops accepting new connections. Established connections keep
// running until their clients leave.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Wait blocks until every connection handler has returned
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handle(ctx context.Context, nc net.Conn) {
	peer := newConn(nc.RemoteAddr().String(), s.cfg.SendBufferSize)
	writer := protocol.NewWriter(nc)

	go peer.writeLoop(func(msg protocol.Message) error {
		_ = nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		return writer.WriteMessage(msg)
	}, nil, 0, s.logger)

	// Unblock the reader if the writer gives up first
	go func() {
		<-peer.Done()
		_ = nc.Close()
	}()

	s.coord.Connect(peer)
	defer func() {
		peer.Close()
		s.coord.Disconnect(ctx, peer)
	}()

	reader := protocol.NewReader(nc)
	for {
		msg, err := reader.ReadMessage()
		if err != nil {
			if errors.Is(err, model.ErrMalformedMessage) {
				s.coord.Reject(peer, err)
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Info("read failed",
					slog.String("peer_id", string(peer.ID())),
					slog.String("error", err.Error()))
			}
			return
		}
		s.coord.HandleMessage(ctx, peer, msg)
	}
}
