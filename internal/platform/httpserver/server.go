package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	entitysync "meridian/contexts/sync-core/entity-sync"
	pushnotifier "meridian/contexts/tenant-edge/push-notifier"
	nodeerrors "meridian/contexts/tenant-edge/push-notifier/domain/errors"
	nodehttp "meridian/contexts/tenant-edge/push-notifier/transport/http"
	subscriptionservice "meridian/contexts/tenant-edge/subscription-service"
	subscriptionapp "meridian/contexts/tenant-edge/subscription-service/application"
	suberrors "meridian/contexts/tenant-edge/subscription-service/domain/errors"
	subhttp "meridian/contexts/tenant-edge/subscription-service/transport/http"
	"meridian/internal/platform/live"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "meridian/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	sync          entitysync.Module
	nodes         pushnotifier.Module
	subscriptions subscriptionservice.Module
	hub           *live.Hub
	feed          *live.Feed
}

func New(
	syncModule entitysync.Module,
	nodesModule pushnotifier.Module,
	subscriptionsModule subscriptionservice.Module,
	hub *live.Hub,
	feed *live.Feed,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		sync:          syncModule,
		nodes:         nodesModule,
		subscriptions: subscriptionsModule,
		hub:           hub,
		feed:          feed,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /sync/force", s.handleForceSync)
	s.mux.HandleFunc("GET /sync/status", s.handleSyncStatus)
	s.mux.HandleFunc("POST /tenants/{tenant_id}/sync/force", s.handleForceTenantSync)

	s.mux.HandleFunc("POST /tenants/{tenant_id}/nodes", s.handleRegisterNode)
	s.mux.HandleFunc("GET /tenants/{tenant_id}/nodes", s.handleListNodes)
	s.mux.HandleFunc("POST /tenants/{tenant_id}/nodes/{node_id}/rotate", s.handleRotateNodeSecret)
	s.mux.HandleFunc("POST /tenants/{tenant_id}/nodes/{node_id}/deactivate", s.handleDeactivateNode)

	s.mux.HandleFunc("GET /tenants/{tenant_id}/subscription", s.handleGetSubscription)
	s.mux.HandleFunc("PUT /tenants/{tenant_id}/subscription/status", s.handleChangeSubscriptionStatus)
	s.mux.HandleFunc("GET /tenants/{tenant_id}/status", s.handleTenantStatus)

	s.mux.HandleFunc("GET /notifications/recent", s.handleRecentNotifications)
	s.mux.HandleFunc("GET /ws/notifications", s.handleNotificationSocket)
}

func (s *Server) handleForceSync(w http.ResponseWriter, r *http.Request) {
	s.sync.Engine.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleForceTenantSync schedules a tenant-scoped run. Like the full force
// endpoint it accepts immediately; outcomes are observable only in logs.
func (s *Server) handleForceTenantSync(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	go s.sync.Engine.RunOnceTenant(context.Background(), tenantID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	lastRun, hasRun := s.sync.Engine.LastRun()
	resp := map[string]any{"has_run": hasRun}
	if hasRun {
		resp["last_run"] = lastRun
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterNode(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")

	var req nodehttp.RegisterNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNodeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	node, secret, err := s.nodes.Registry.RegisterNode(r.Context(), tenantID, req.CallbackURL, req.Name)
	if err != nil {
		writeNodeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nodehttp.RegisterNodeResponse{
		Node:   nodeResponse(node),
		Secret: secret,
	})
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	nodes, err := s.nodes.Registry.ListNodes(r.Context(), tenantID)
	if err != nil {
		writeNodeDomainError(w, err)
		return
	}
	resp := nodehttp.NodeListResponse{Nodes: make([]nodehttp.NodeResponse, 0, len(nodes))}
	for _, node := range nodes {
		resp.Nodes = append(resp.Nodes, nodeResponse(node))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRotateNodeSecret(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("node_id")
	secret, err := s.nodes.Registry.RotateSecret(r.Context(), nodeID)
	if err != nil {
		writeNodeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"secret": secret})
}

func (s *Server) handleDeactivateNode(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("node_id")
	if err := s.nodes.Registry.DeactivateNode(r.Context(), nodeID); err != nil {
		writeNodeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	subscription, err := s.subscriptions.Service.GetSubscription(r.Context(), tenantID)
	if err != nil {
		writeSubscriptionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse(subscription))
}

func (s *Server) handleChangeSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")

	var req subhttp.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSubscriptionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	subscription, err := s.subscriptions.Service.ChangeStatus(r.Context(), tenantID, subscriptionapp.ChangeStatusInput{
		Plan:      req.Plan,
		Status:    req.Status,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		RenewalAt: req.RenewalAt,
	})
	if err != nil {
		writeSubscriptionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse(subscription))
}

func (s *Server) handleTenantStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	allowed, err := s.subscriptions.Service.IsTenantAllowed(r.Context(), tenantID)
	if err != nil {
		writeSubscriptionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subhttp.TenantStatusResponse{
		TenantID: tenantID,
		Allowed:  allowed,
	})
}

func (s *Server) handleRecentNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.feed.Recent(),
	})
}

func writeNodeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, nodeerrors.ErrNodeNotFound):
		writeNodeError(w, http.StatusNotFound, "node_not_found", err.Error())
	case errors.Is(err, nodeerrors.ErrInvalidCallbackURL):
		writeNodeError(w, http.StatusBadRequest, "invalid_callback_url", err.Error())
	case errors.Is(err, nodeerrors.ErrInvalidNode):
		writeNodeError(w, http.StatusBadRequest, "invalid_node", err.Error())
	default:
		writeNodeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSubscriptionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, suberrors.ErrSubscriptionNotFound):
		writeSubscriptionError(w, http.StatusNotFound, "subscription_not_found", err.Error())
	case errors.Is(err, suberrors.ErrSubscriptionConflict):
		writeSubscriptionError(w, http.StatusConflict, "subscription_conflict", err.Error())
	case errors.Is(err, suberrors.ErrInvalidStatus):
		writeSubscriptionError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, suberrors.ErrInvalidRequest):
		writeSubscriptionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeSubscriptionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeNodeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, nodehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeSubscriptionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, subhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
