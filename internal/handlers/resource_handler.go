package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shaibs3/studyhub/internal/service"
	"go.uber.org/zap"
)

// ResourceHandler serves the shared catalog.
type ResourceHandler struct {
	resources *service.ResourceService
	logger    *zap.Logger
}

func NewResourceHandler(resources *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources, logger: zap.NewNop()}
}

// RegisterRoutes registers the routes for this handler
func (h *ResourceHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	h.logger = logger.Named("resource_handler")
	router.HandleFunc("/resources", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/resources", h.handleCreate).Methods(http.MethodPost)
}

type createResourceRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (h *ResourceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resources.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resources)
}

func (h *ResourceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, "Please log in to add a resource")
	if !ok {
		return
	}
	var req createResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resourceID, err := h.resources.Create(r.Context(), id.UserID, service.NewResource{
		Title:       req.Title,
		URL:         req.URL,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, createdResponse{Message: "New resource added successfully", ID: resourceID})
}
