package api

import (
	"net/http"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func (h *Handlers) ComposeFpl() http.HandlerFunc {
	return ComposeFplHandler(h.deps.Services.Composer, h.deps.Config.IsDevelopment())
}

// ListAudits returns nil when audits are disabled so the route is not
// registered.
func (h *Handlers) ListAudits() http.HandlerFunc {
	if h.deps.Repo.Audits == nil {
		return nil
	}
	return ListAuditsHandler(h.deps.Repo.Audits, h.deps.Config.IsDevelopment())
}
