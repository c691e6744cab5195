package api

import (
	"log/slog"
	"net/http"

	"github.com/qualixa/qualixa/internal/config"
	"github.com/qualixa/qualixa/internal/probe"
	"github.com/qualixa/qualixa/internal/storage"
)

type Server struct {
	cfg        *config.Config
	store      storage.Store
	dispatcher *probe.Dispatcher
	logger     *slog.Logger
	handler    http.Handler
	version    string
}

func NewServer(cfg *config.Config, store storage.Store, dispatcher *probe.Dispatcher, logger *slog.Logger, version string) *Server {
	s := &Server{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		version:    version,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = mux
	handler = bodyLimit(cfg.Server.MaxBodySize)(handler)
	rl := newRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst)
	handler = rl.middleware(cfg.TrustedNets())(handler)
	handler = cors(cfg.Server.CORSOrigins)(handler)
	handler = secureHeaders()(handler)
	handler = logging(logger)(handler)
	handler = requestID()(handler)
	handler = recovery(logger)(handler)

	s.handler = handler
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	epRead := auth(s.cfg, "endpoints.read")
	epWrite := auth(s.cfg, "endpoints.write")
	planRead := auth(s.cfg, "plans.read")
	planWrite := auth(s.cfg, "plans.write")
	execRead := auth(s.cfg, "executions.read")
	execRun := auth(s.cfg, "executions.run")

	mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	mux.Handle("POST /execute-api-test", execRun(http.HandlerFunc(s.handleExecuteAPITest)))

	mux.Handle("GET /api/v1/endpoints", epRead(http.HandlerFunc(s.handleListEndpoints)))
	mux.Handle("GET /api/v1/endpoints/{id}", epRead(http.HandlerFunc(s.handleGetEndpoint)))
	mux.Handle("POST /api/v1/endpoints", epWrite(http.HandlerFunc(s.handleCreateEndpoint)))
	mux.Handle("PUT /api/v1/endpoints/{id}", epWrite(http.HandlerFunc(s.handleUpdateEndpoint)))
	mux.Handle("DELETE /api/v1/endpoints/{id}", epWrite(http.HandlerFunc(s.handleDeleteEndpoint)))
	mux.Handle("GET /api/v1/endpoints/{id}/executions", execRead(http.HandlerFunc(s.handleListEndpointExecutions)))

	mux.Handle("GET /api/v1/testplans", planRead(http.HandlerFunc(s.handleListTestPlans)))
	mux.Handle("GET /api/v1/testplans/{id}", planRead(http.HandlerFunc(s.handleGetTestPlan)))
	mux.Handle("POST /api/v1/testplans", planWrite(http.HandlerFunc(s.handleCreateTestPlan)))
	mux.Handle("DELETE /api/v1/testplans/{id}", planWrite(http.HandlerFunc(s.handleDeleteTestPlan)))

	mux.Handle("GET /api/v1/executions", execRead(http.HandlerFunc(s.handleListExecutions)))
	mux.Handle("GET /api/v1/executions/{id}", execRead(http.HandlerFunc(s.handleGetExecution)))
}
