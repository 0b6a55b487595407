package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gobwas/ws"
)

type HTTPHandler struct {
	Server *Server
}

func NewHTTPServer(server *Server) http.Handler {
	httpHandler := HTTPHandler{server}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RealIP)
	r.Use(httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
	r.Use(middleware.Heartbeat("/"))

	r.Get("/ws", httpHandler.websocket())
	r.Get("/room/{gameId}/{roomCode}", httpHandler.getRoomEventStream())
	return r
}

func (h HTTPHandler) websocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		client := NewClient(conn, r.RemoteAddr)
		client.run(h.Server)
	}
}

// getRoomEventStream lets a spectator follow a room over SSE without
// taking a player slot.
func (h HTTPHandler) getRoomEventStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, exists := h.Server.GetHost(chi.URLParam(r, "gameId"))
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "HTTP Streaming not supported!", http.StatusBadRequest)
			return
		}

		roomCode := chi.URLParam(r, "roomCode")
		watcher, init, ok := host.Watch(roomCode)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		receiverSSE := NewReceiverSSE(w, flusher)
		receiverSSE.SendByteSlice(init)
		logger := GetRoomIPLogger(r.RemoteAddr, roomCode)
		logger.JoinedRoom()
	messageLoop:
		for {
			select {
			case msg, more := <-watcher:
				if !more {
					receiverSSE.SendRoomClosedMessage()
					logger.LeftRoom()
					break messageLoop
				}
				receiverSSE.SendByteSlice(msg)
			case <-r.Context().Done():
				host.Unwatch(roomCode, watcher)
				logger.LeftRoom()
				break messageLoop
			}
		}
	}
}
