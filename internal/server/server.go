//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=server_mock
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/courier"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/fulfillment"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/orders"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/shipment"
)

type Orchestrator interface {
	CreateShipment(ctx context.Context, orderID string, force bool, actor string) (*repository.Shipment, error)
	HandleAction(ctx context.Context, shipmentID string, action fulfillment.Action, params fulfillment.ActionParams, actor string) (interface{}, error)
}

type ShipmentReader interface {
	Get(ctx context.Context, shipmentID string) (*shipment.Detail, error)
}

type OrderService interface {
	Get(ctx context.Context, orderID string) (*repository.Order, error)
	History(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error)
	UpdateStatus(ctx context.Context, orderID string, upd orders.StatusUpdate) (*repository.Order, error)
}

type OrderCache interface {
	Get(orderID string) (*repository.Order, bool)
	Set(order *repository.Order)
}

type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (bool, error)
}

type Server struct {
	orchestrator Orchestrator
	shipments    ShipmentReader
	orders       OrderService
	cache        OrderCache
	userRepo     UserRepo
	logger       *zap.Logger
	server       *http.Server
	AuditManager *AuditManager
}

func New(orchestrator Orchestrator, shipments ShipmentReader, orderSvc OrderService, cache OrderCache, userRepo UserRepo, auditSink AuditSink, logger *zap.Logger) *Server {
	auditManager := NewAuditManager(2, 5, 500*time.Millisecond, auditSink)
	return &Server{
		orchestrator: orchestrator,
		shipments:    shipments,
		orders:       orderSvc,
		cache:        cache,
		userRepo:     userRepo,
		logger:       logger,
		AuditManager: auditManager,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.AuditManager.Start(ctx)

	log.Printf("Server starting on port %s", port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	log.Println("HTTP server shutdown completed")

	s.AuditManager.Shutdown(ctx)
	log.Println("Server shutdown completed successfully")

	return nil
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.Use(s.auditLogMiddleware)
	router.Use(s.basicAuthMiddleware)

	router.HandleFunc("/shipments", s.handleCreateShipment).Methods(http.MethodPost)
	router.HandleFunc("/shipments/{id}", s.handleGetShipment).Methods(http.MethodGet)
	router.HandleFunc("/shipments/{id}/actions", s.handleShipmentAction).Methods(http.MethodPost)

	router.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	router.HandleFunc("/orders/{id}/history", s.handleOrderHistory).Methods(http.MethodGet)
	router.HandleFunc("/orders/{id}/status", s.handleUpdateOrderStatus).Methods(http.MethodPut)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		valid, err := s.userRepo.ValidateUser(r.Context(), username, password)
		if err != nil || !valid {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	respondJSON(w, status, apiError{Error: message, Details: details})
}

// respondOperationError maps domain errors onto HTTP statuses. Anything it
// does not recognize is treated as an internal failure and counted.
func (s *Server) respondOperationError(w http.ResponseWriter, operation string, err error) {
	var gatewayErr *courier.Error

	switch {
	case errors.Is(err, repository.ErrObjectNotFound):
		respondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, fulfillment.ErrValidation),
		errors.Is(err, fulfillment.ErrUnknownAction),
		errors.Is(err, orders.ErrUnknownStatus),
		errors.Is(err, shipment.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, shipment.ErrDuplicateShipment):
		respondError(w, http.StatusConflict, "shipment already exists", err.Error())
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, shipment.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid status transition", err.Error())
	case errors.Is(err, shipment.ErrIneligibleOrder),
		errors.Is(err, shipment.ErrNoConsignment):
		respondError(w, http.StatusUnprocessableEntity, "operation not applicable", err.Error())
	case errors.As(err, &gatewayErr):
		respondError(w, http.StatusBadGateway, "courier service error", gatewayErr.Error())
	default:
		s.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues(operation).Inc()
		respondError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func actorFromRequest(r *http.Request) string {
	if username, _, ok := r.BasicAuth(); ok {
		return username
	}
	return "unknown"
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var createRequest struct {
		OrderID     string `json:"order_id"`
		ForceCreate bool   `json:"force_create"`
	}

	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	created, err := s.orchestrator.CreateShipment(r.Context(), createRequest.OrderID, createRequest.ForceCreate, actorFromRequest(r))
	if err != nil {
		s.respondOperationError(w, "create_shipment", err)
		return
	}

	respondJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Data:    created,
		Message: "Shipment created successfully",
	})
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID := mux.Vars(r)["id"]
	if shipmentID == "" {
		respondError(w, http.StatusBadRequest, "missing shipment ID", "")
		return
	}

	detail, err := s.shipments.Get(r.Context(), shipmentID)
	if err != nil {
		s.respondOperationError(w, "get_shipment", err)
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: detail})
}

func (s *Server) handleShipmentAction(w http.ResponseWriter, r *http.Request) {
	shipmentID := mux.Vars(r)["id"]
	if shipmentID == "" {
		respondError(w, http.StatusBadRequest, "missing shipment ID", "")
		return
	}

	var actionRequest struct {
		Action   string `json:"action"`
		Status   string `json:"status,omitempty"`
		Reason   string `json:"reason,omitempty"`
		Location string `json:"location,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&actionRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	params := fulfillment.ActionParams{
		Status:   actionRequest.Status,
		Reason:   actionRequest.Reason,
		Location: actionRequest.Location,
	}

	result, err := s.orchestrator.HandleAction(r.Context(), shipmentID, fulfillment.Action(actionRequest.Action), params, actorFromRequest(r))
	if err != nil {
		s.respondOperationError(w, "shipment_action_"+actionRequest.Action, err)
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: result})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	if order, found := s.cache.Get(orderID); found {
		respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: order})
		return
	}

	order, err := s.orders.Get(r.Context(), orderID)
	if err != nil {
		s.respondOperationError(w, "get_order", err)
		return
	}
	s.cache.Set(order)

	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: order})
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	history, err := s.orders.History(r.Context(), orderID)
	if err != nil {
		s.respondOperationError(w, "get_order_history", err)
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: history})
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	var statusRequest struct {
		Status       string  `json:"status"`
		Reason       string  `json:"reason,omitempty"`
		TrackingCode *string `json:"tracking_code,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	newStatus, err := orders.ParseStatus(statusRequest.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid status", err.Error())
		return
	}

	updated, err := s.orders.UpdateStatus(r.Context(), orderID, orders.StatusUpdate{
		Status:       newStatus,
		Actor:        actorFromRequest(r),
		Reason:       statusRequest.Reason,
		TrackingCode: statusRequest.TrackingCode,
	})
	if err != nil {
		s.respondOperationError(w, "update_order_status", err)
		return
	}
	s.cache.Set(updated)

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    updated,
		Message: "Order status updated successfully",
	})
}
