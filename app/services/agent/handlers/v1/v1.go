// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/compoundlabs/compounder/app/services/agent/handlers/v1/agentgrp"
	"github.com/compoundlabs/compounder/business/core/agent"
	"github.com/compoundlabs/compounder/foundation/events"
	"github.com/compoundlabs/compounder/foundation/ledger"
	"github.com/compoundlabs/compounder/foundation/web"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	Agent  *agent.Agent
	Ledger ledger.Client
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	agt := agentgrp.Handlers{
		Log:    cfg.Log,
		Agent:  cfg.Agent,
		Ledger: cfg.Ledger,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/status", agt.Status)
	app.Handle(http.MethodGet, version, "/cycles/list", agt.Cycles)
	app.Handle(http.MethodGet, version, "/plan/:principal", agt.Plan)
	app.Handle(http.MethodPost, version, "/plan", agt.SubmitPlan)
	app.Handle(http.MethodGet, version, "/events", agt.Events)
}
