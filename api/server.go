package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/transferai/agreement-proxy/cache"
	"github.com/transferai/agreement-proxy/events"
	"github.com/transferai/agreement-proxy/institutions"
	"github.com/transferai/agreement-proxy/selection"
)

type Server struct {
	port         string
	institutions *institutions.Service
	graph        *selection.Graph
	cacheService *cache.Service
	authExpired  *events.SubscriptionManager
	server       *http.Server
	upgrader     websocket.Upgrader
}

func New(port string, institutionsService *institutions.Service, graph *selection.Graph, cacheService *cache.Service, authExpired *events.SubscriptionManager) *Server {
	return &Server{
		port:         port,
		institutions: institutionsService,
		graph:        graph,
		cacheService: cacheService,
		authExpired:  authExpired,
		upgrader: websocket.Upgrader{
			// The proxy runs alongside its UI; same-host checks are left
			// to the deployment
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/institutions", s.handleInstitutions).Methods("GET")

	// Selection graph endpoints
	router.HandleFunc("/api/v1/selection", s.handleSelection).Methods("GET")
	router.HandleFunc("/api/v1/selection/sending", s.handleSetSending).Methods("POST")
	router.HandleFunc("/api/v1/selection/receiving", s.handleSetReceiving).Methods("POST")
	router.HandleFunc("/api/v1/selection/year", s.handleSetYear).Methods("POST")
	router.HandleFunc("/api/v1/selection/category", s.handleSetCategory).Methods("POST")
	router.HandleFunc("/api/v1/selection/major", s.handleSetMajor).Methods("POST")
	router.HandleFunc("/api/v1/selection/active-agreement", s.handleSetActiveAgreement).Methods("POST")
	router.HandleFunc("/api/v1/selection/retry", s.handleRetry).Methods("POST")

	// Push channel for graph updates and auth expiry
	router.HandleFunc("/ws", s.handleWebSocket)

	router.HandleFunc("/health", s.handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:    ":" + s.port,
		Handler: router,
	}

	log.Printf("Server starting at http://localhost:%s", s.port)
	log.Println("Prometheus metrics available at /metrics endpoint")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}
