// Package api exposes the guidance engine over HTTP: experiment lifecycle,
// variant assignment, result recording, feedback collection and the
// recommendation endpoints, plus a WebSocket feed of engine events.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/experiment"
	"github.com/eduniti/guidance/engine/feedback"
	"github.com/eduniti/guidance/engine/recommender"
	"github.com/eduniti/guidance/engine/schema"
)

// Server provides the HTTP API over the guidance engine.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// server implements the API server
type server struct {
	addr        string
	framework   *experiment.Framework
	feedback    *feedback.System
	recommender *recommender.Engine
	validator   *schema.Validator
	hub         *WSHub
	log         logrus.FieldLogger
	httpServer  *http.Server
	upgrader    websocket.Upgrader
	startedAt   time.Time
}

// NewServer creates a new API server instance
func NewServer(
	addr string,
	framework *experiment.Framework,
	feedbackSystem *feedback.System,
	rec *recommender.Engine,
	validator *schema.Validator,
	hub *WSHub,
	log logrus.FieldLogger,
) Server {
	return &server{
		addr:        addr,
		framework:   framework,
		feedback:    feedbackSystem,
		recommender: rec,
		validator:   validator,
		hub:         hub,
		log:         log.WithField("component", "api-server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin
			},
		},
	}
}

// Start initializes and starts the HTTP API server
func (s *server) Start(ctx context.Context) error {
	s.log.Info("Starting API server")
	s.startedAt = time.Now()

	router := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.hub.Run()

	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("API server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("API server failed")
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP API server
func (s *server) Stop() error {
	s.log.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.hub.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.WithError(err).Error("Failed to shutdown API server gracefully")
		return err
	}

	s.log.Info("API server stopped")
	return nil
}

// setupRoutes configures all HTTP routes and middleware
func (s *server) setupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.Use(s.enableCORS)
	router.Use(s.loggingMiddleware)
	router.Use(s.metricsMiddleware)
	router.Use(s.errorHandlingMiddleware)

	api := router.PathPrefix("/api").Subrouter()

	// Experiment lifecycle endpoints
	api.HandleFunc("/tests", s.handleCreateTest).Methods("POST", "OPTIONS")
	api.HandleFunc("/tests", s.handleListTests).Methods("GET", "OPTIONS")
	api.HandleFunc("/tests/{testId}", s.handleGetTest).Methods("GET", "OPTIONS")
	api.HandleFunc("/tests/{testId}/start", s.handleStartTest).Methods("POST", "OPTIONS")
	api.HandleFunc("/tests/{testId}/stop", s.handleStopTest).Methods("POST", "OPTIONS")
	api.HandleFunc("/tests/{testId}/pause", s.handlePauseTest).Methods("POST", "OPTIONS")
	api.HandleFunc("/tests/{testId}/resume", s.handleResumeTest).Methods("POST", "OPTIONS")

	// Assignment and result endpoints
	api.HandleFunc("/tests/{testId}/assignments", s.handleAssignUser).Methods("POST", "OPTIONS")
	api.HandleFunc("/tests/{testId}/results", s.handleRecordResult).Methods("POST", "OPTIONS")
	api.HandleFunc("/tests/{testId}/results", s.handleGetResults).Methods("GET", "OPTIONS")
	api.HandleFunc("/tests/{testId}/analysis", s.handleAnalyzeTest).Methods("GET", "OPTIONS")

	// Feedback endpoints
	api.HandleFunc("/feedback", s.handleSubmitFeedback).Methods("POST", "OPTIONS")
	api.HandleFunc("/feedback/summary", s.handleFeedbackSummary).Methods("GET", "OPTIONS")
	api.HandleFunc("/feedback/roadmap", s.handleFeedbackRoadmap).Methods("GET", "OPTIONS")
	api.HandleFunc("/feedback/export", s.handleExportFeedback).Methods("POST", "OPTIONS")
	api.HandleFunc("/feedback/{feedbackType}/analysis", s.handleAnalyzeFeedback).Methods("POST", "OPTIONS")

	// Recommendation endpoints
	api.HandleFunc("/recommendations/stream", s.handleStreamRecommendations).Methods("POST", "OPTIONS")
	api.HandleFunc("/recommendations/college", s.handleCollegeRecommendations).Methods("POST", "OPTIONS")
	api.HandleFunc("/recommendations/career", s.handleCareerRecommendations).Methods("POST", "OPTIONS")
	api.HandleFunc("/quiz", s.handleScoreQuiz).Methods("POST", "OPTIONS")

	// WebSocket endpoint for real-time updates
	api.HandleFunc("/ws", s.hub.HandleConnection(&s.upgrader))

	// Health and status endpoints
	api.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS")
	api.HandleFunc("/status", s.handleStatus).Methods("GET", "OPTIONS")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	return router
}

// enableCORS adds CORS headers to responses
func (s *server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		s.log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapper.statusCode,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request processed")
	})
}

// errorHandlingMiddleware provides centralized panic recovery
func (s *server) errorHandlingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.WithField("error", err).Error("Panic in HTTP handler")
				s.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status codes
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Hijack passes through to the underlying writer so WebSocket upgrades work
// behind the logging and metrics middleware.
func (w *responseWriterWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	return hijacker.Hijack()
}

// writeJSONResponse writes a JSON response with the given status code
func (s *server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response with the given status code and message
func (s *server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errorResponse := map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  statusCode,
	}

	s.writeJSONResponse(w, statusCode, errorResponse)
}
