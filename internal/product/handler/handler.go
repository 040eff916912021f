// Package handler provides HTTP handlers for product-related operations.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
	"github.com/abgdnv/productcatalog/internal/platform/auth"
	"github.com/abgdnv/productcatalog/internal/platform/web"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/internal/product/validation"
	"github.com/go-chi/chi/v5"
)

const welcomeMessage = "Hello World! Welcome to the Product Catalog RESTful API."

// API serves the product catalog endpoints.
type API struct {
	service      service.ProductService
	validator    *validation.Validator
	auth         auth.Authenticator
	responder    *web.ErrorResponder
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewAPI creates a new instance of API with the provided service.
func NewAPI(svc service.ProductService, authenticator auth.Authenticator, responder *web.ErrorResponder, logger *slog.Logger, maxBodyBytes int64) *API {
	return &API{
		service:      svc,
		validator:    validation.New(),
		auth:         authenticator,
		responder:    responder,
		logger:       logger.With("component", "api"),
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes binds every endpoint to r. Stage order per route is significant:
// id format is checked before credentials, credentials before payload validation.
func (a *API) RegisterRoutes(r chi.Router) {
	base := web.NewPipeline(a.responder, web.ParseBody(a.maxBodyBytes))

	r.NotFound(a.RouteNotFound)
	r.MethodNotAllowed(a.MethodNotAllowed)
	r.Get("/", a.Home)
	r.Get("/healthz", a.HealthCheck)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", base.Then(a.List))
		r.Post("/", base.With(a.authenticate, a.validateCreate).Then(a.Create))
		r.Get("/search", base.Then(a.Search))
		r.Get("/stats", base.Then(a.Stats))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", base.With(a.validateID).Then(a.FindByID))
			r.Put("/", base.With(a.validateID, a.authenticate, a.validateUpdate).Then(a.Update))
			r.Delete("/", base.With(a.validateID, a.authenticate).Then(a.DeleteByID))
		})
	})
}

// Home returns the plain text greeting.
func (a *API) Home(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, welcomeMessage)
}

// HealthCheck is a simple health check endpoint.
func (a *API) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RouteNotFound reports an unknown route through the error responder.
func (a *API) RouteNotFound(w http.ResponseWriter, r *http.Request) {
	a.responder.Respond(w, r, apperr.NotFound(fmt.Sprintf("Route %s %s not found.", r.Method, r.URL.Path)))
}

// MethodNotAllowed reports a known route requested with an unsupported method.
func (a *API) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.responder.Respond(w, r, apperr.MethodNotAllowed(fmt.Sprintf("Method %s not allowed for %s.", r.Method, r.URL.Path)))
}

// List returns a filtered page of products.
func (a *API) List(w http.ResponseWriter, req *web.Request) error {
	query, err := service.ParseListQuery(req.URL.Query())
	if err != nil {
		return err
	}
	result, err := a.service.List(req.Context(), query)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	web.RespondJSON(w, a.logger, http.StatusOK, result)
	return nil
}

// Search returns every product whose name contains the term.
func (a *API) Search(w http.ResponseWriter, req *web.Request) error {
	term, err := service.ParseSearchQuery(req.URL.Query())
	if err != nil {
		return err
	}
	a.logger.DebugContext(req.Context(), "Searching products", "term", term)
	results, err := a.service.Search(req.Context(), term)
	if err != nil {
		return fmt.Errorf("failed to search products: %w", err)
	}
	web.RespondJSON(w, a.logger, http.StatusOK, results)
	return nil
}

// Stats returns aggregate catalog statistics.
func (a *API) Stats(w http.ResponseWriter, req *web.Request) error {
	stats, err := a.service.Stats(req.Context())
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}
	web.RespondJSON(w, a.logger, http.StatusOK, stats)
	return nil
}

// FindByID retrieves a product by its ID.
func (a *API) FindByID(w http.ResponseWriter, req *web.Request) error {
	id := productID(req)
	a.logger.DebugContext(req.Context(), "Received request to find product by ID", "ID", id)
	found, err := a.service.FindByID(req.Context(), id)
	if err != nil {
		return err
	}
	web.RespondJSON(w, a.logger, http.StatusOK, found)
	return nil
}

// Create creates a new product.
func (a *API) Create(w http.ResponseWriter, req *web.Request) error {
	created, err := a.service.Create(req.Context(), toCreateDto(req.Payload))
	if err != nil {
		return err
	}
	web.RespondJSON(w, a.logger, http.StatusCreated, created)
	return nil
}

// Update applies a partial update to a product.
func (a *API) Update(w http.ResponseWriter, req *web.Request) error {
	updated, err := a.service.Update(req.Context(), productID(req), toUpdateDto(req.Payload))
	if err != nil {
		return err
	}
	web.RespondJSON(w, a.logger, http.StatusOK, updated)
	return nil
}

// DeleteByID deletes a product by its ID.
func (a *API) DeleteByID(w http.ResponseWriter, req *web.Request) error {
	if err := a.service.DeleteByID(req.Context(), productID(req)); err != nil {
		return err
	}
	web.RespondJSON(w, a.logger, http.StatusNoContent, nil)
	return nil
}

func (a *API) validateID(req *web.Request) error {
	return a.validator.ID(productID(req))
}

func (a *API) authenticate(req *web.Request) error {
	return a.auth.Authenticate(req.Request)
}

func (a *API) validateCreate(req *web.Request) error {
	return a.validator.Create(req.Payload)
}

func (a *API) validateUpdate(req *web.Request) error {
	return a.validator.Update(req.Payload)
}

func productID(req *web.Request) string {
	return chi.URLParam(req.Request, "id")
}
