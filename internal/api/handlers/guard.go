package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/audit"
	"github.com/gatherly/server/internal/authz"
	"github.com/gatherly/server/internal/metrics"
)

// Problem type URIs shared by all handlers.
const (
	ProblemValidation   = "https://gatherly.app/problems/validation-error"
	ProblemUnauthorized = "https://gatherly.app/problems/unauthorized"
	ProblemForbidden    = "https://gatherly.app/problems/forbidden"
	ProblemNotFound     = "https://gatherly.app/problems/not-found"
	ProblemConflict     = "https://gatherly.app/problems/conflict"
	ProblemServerError  = "https://gatherly.app/problems/server-error"
)

// Guard is the single enforcement point for route authorization. Every
// protected handler calls Require before touching the domain layer;
// handlers never compare roles or owner ids themselves.
type Guard struct {
	Engine *authz.Engine
	Audit  *audit.Logger
	Env    string
}

func NewGuard(engine *authz.Engine, auditLogger *audit.Logger, env string) *Guard {
	return &Guard{Engine: engine, Audit: auditLogger, Env: env}
}

// Require evaluates the caller against the policy table and writes the
// response itself when the verdict is a denial. The second return
// value reports whether the handler may proceed.
//
// Denials map to the same body regardless of why the role check
// failed, and a missing resource is reported before ownership is ever
// considered, so probing ids through a 403/404 difference is not
// possible for callers who could not touch the resource.
func (g *Guard) Require(w http.ResponseWriter, r *http.Request, resource authz.Resource, action authz.Action, resourceID string) (authz.Identity, bool) {
	identity := middleware.IdentityFrom(r)

	decision, err := g.Engine.Decide(r.Context(), identity, resource, action, resourceID)
	if err != nil {
		metrics.AccessDecisionsTotal.WithLabelValues(string(resource), string(action), "error").Inc()
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, g.Env)
		return identity, false
	}

	if decision.Allowed {
		metrics.AccessDecisionsTotal.WithLabelValues(string(resource), string(action), "allow").Inc()
		return identity, true
	}

	switch decision.Reason {
	case authz.DenyNotFound:
		metrics.AccessDecisionsTotal.WithLabelValues(string(resource), string(action), "not_found").Inc()
		problem.Write(w, r, http.StatusNotFound, ProblemNotFound, "Event not found", nil, g.Env)
	default:
		metrics.AccessDecisionsTotal.WithLabelValues(string(resource), string(action), "forbidden").Inc()
		g.auditDenied(identity, resource, action, resourceID)
		problem.Write(w, r, http.StatusForbidden, ProblemForbidden, "Unauthorized or Forbidden", nil, g.Env)
	}
	return identity, false
}

// auditDenied records refused attempts at privileged operations. Read
// and listing denials are routine noise and are not audited.
func (g *Guard) auditDenied(identity authz.Identity, resource authz.Resource, action authz.Action, resourceID string) {
	switch action {
	case authz.ActionCreate, authz.ActionUpdate, authz.ActionDelete, authz.ActionExport:
		name := fmt.Sprintf("%s.%s", strings.ToLower(string(resource)), action)
		g.Audit.LogFailure(name, identity.UserID, strings.ToLower(string(resource)), resourceID, nil)
	}
}
