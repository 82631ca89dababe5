package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter exposes the subscription endpoint over plain HTTP for
// self-hosted deployments that run the server binary instead of the Lambda.
// The CORS policy matches the Lambda surface so the dashboard's subscribe
// form works against either.
func NewRouter(agent SubscriptionAgent, logger *log.Logger) *chi.Mux {
	api := &apiHandler{Agent: agent, Log: logger}
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Preflights pass through so the subscribe handler answers them with
	// 204 and no body, the same response the Lambda surface gives.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"POST", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type"},
		MaxAge:             300,
		OptionsPassthrough: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Post("/api/subscribe", api.serveSubscribe)
	r.Options("/api/subscribe", api.serveSubscribe)
	r.MethodNotAllowed(api.serveSubscribe)
	return r
}

func (h *apiHandler) serveSubscribe(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	status, payload := h.handleRequest(req.Context(), req.Method, string(body))

	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Printf("failed to write response: %s", err)
	}
}
