// Package agentgrp maintains the group of handlers exposing the agent's
// decisions and history.
package agentgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/compoundlabs/compounder/business/core/agent"
	"github.com/compoundlabs/compounder/business/core/compound"
	"github.com/compoundlabs/compounder/business/data/history"
	"github.com/compoundlabs/compounder/business/web/errs"
	"github.com/compoundlabs/compounder/foundation/events"
	"github.com/compoundlabs/compounder/foundation/ledger"
	"github.com/compoundlabs/compounder/foundation/web"
)

// Handlers manages the set of agent endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Agent  *agent.Agent
	Ledger ledger.Client
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Events handles a web socket to provide agent events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns the node's chain view and the agent's latest decision.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nodeStatus, err := h.Ledger.Status(ctx)
	if err != nil {
		return fmt.Errorf("querying node status: %w", err)
	}

	status := statusResponse{
		Account: h.Agent.Account().Hex(),
		Node:    nodeStatus,
	}

	if nextWake := h.Agent.NextWake(); !nextWake.IsZero() {
		status.NextWake = &nextWake
	}

	last, err := h.Agent.LastCycle(ctx)
	switch {
	case err == nil:
		status.LastCycle = &last

	case !errors.Is(err, history.ErrNotFound):
		return fmt.Errorf("querying last cycle: %w", err)
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Cycles returns the recorded decision cycles, newest first.
func (h Handlers) Cycles(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records, err := h.Agent.Cycles(ctx)
	if err != nil {
		return fmt.Errorf("listing cycles: %w", err)
	}

	return web.Respond(ctx, w, records, http.StatusOK)
}

// Plan computes the recommended wait time for a hypothetical principal
// without touching the chain.
func (h Handlers) Plan(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	principal, err := strconv.ParseFloat(web.Param(r, "principal"), 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid principal: %w", err), http.StatusBadRequest)
	}

	seconds, found, err := h.Agent.Plan(principal)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	plan := planResponse{
		Principal: principal,
		Found:     found,
	}
	if found {
		plan.WaitSeconds = seconds
	}

	return web.Respond(ctx, w, plan, http.StatusOK)
}

// SubmitPlan computes the recommended wait time for a caller supplied
// coefficient set.
func (h Handlers) SubmitPlan(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req planRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	coefs, err := compound.NewCoefs(req.Years, req.Rate, req.AvgFees, req.InitialPrincipal)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	seconds, found := compound.NewModel(coefs).IdealRewardWait()

	plan := planResponse{
		Principal: req.InitialPrincipal,
		Found:     found,
	}
	if found {
		plan.WaitSeconds = seconds
	}

	return web.Respond(ctx, w, plan, http.StatusOK)
}
