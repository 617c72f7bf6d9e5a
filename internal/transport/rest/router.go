package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/repository"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/service"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/rest/handler"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/rest/middleware"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	AdaptiveService *service.AdaptiveLogicService
	HeatmapService  *service.HeatmapService
	EventsService   *service.SessionEventService
	Questions       repository.QuestionRepo
	WSHub           *ws.Hub
	Logger          logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler()
	heatmapHandler := handler.NewHeatmapHandler(c.HeatmapService)
	adaptiveHandler := handler.NewAdaptiveHandler(c.AdaptiveService, c.Questions, c.EventsService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, log)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	api := v1.NewRoute().Subrouter()
	api.Use(authMW.RequireUser)

	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	// Compare must be registered before the {sessionId} routes
	api.HandleFunc("/heatmap/compare/{sessionId}/{baselineSessionId}", heatmapHandler.Compare).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}", heatmapHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/summary", heatmapHandler.Summary).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/cells", heatmapHandler.Cells).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/export/csv", heatmapHandler.ExportCSV).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/export/markdown", heatmapHandler.ExportMarkdown).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/export/html", heatmapHandler.ExportHTML).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/drilldown/{dimensionKey}/{severityBucket}", heatmapHandler.Drilldown).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/priority-gaps", heatmapHandler.PriorityGaps).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/action-plan", heatmapHandler.ActionPlan).Methods("GET", "OPTIONS")
	api.HandleFunc("/heatmap/{sessionId}/cache", heatmapHandler.InvalidateCache).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/questionnaires/{questionnaireId}/visible-questions", adaptiveHandler.VisibleQuestions).Methods("POST", "OPTIONS")
	api.HandleFunc("/questionnaires/{questionnaireId}/dependency-graph", adaptiveHandler.DependencyGraph).Methods("GET", "OPTIONS")
	api.HandleFunc("/questions/{questionId}/next", adaptiveHandler.NextQuestion).Methods("POST", "OPTIONS")
	api.HandleFunc("/questions/{questionId}/state", adaptiveHandler.QuestionState).Methods("POST", "OPTIONS")
	api.HandleFunc("/questions/{questionId}/rules", adaptiveHandler.Rules).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/adaptive-changes", adaptiveHandler.AdaptiveChanges).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization, X-Request-ID"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
