package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/varkas/grindbot/internal/bot"
)

// StatusProvider is what the endpoints read, the engine implements it.
type StatusProvider interface {
	Status() *bot.Status
}

// HttpServer serves the live bot status: one JSON probe endpoint and a
// websocket that pushes the status once a second.
type HttpServer struct {
	logger   *slog.Logger
	status   StatusProvider
	server   *http.Server
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, status StatusProvider, host string, port int) *HttpServer {
	s := &HttpServer{
		logger: logger,
		status: status,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebsocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: mux,
	}
	return s
}

func (s *HttpServer) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Status server listening", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HttpServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.status.Status()
	if status == nil {
		http.Error(w, "no status yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Error encoding status", slog.Any("error", err))
	}
}

func (s *HttpServer) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Error upgrading websocket", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		status := s.status.Status()
		if status == nil {
			continue
		}
		if err := conn.WriteJSON(status); err != nil {
			return
		}
	}
}
