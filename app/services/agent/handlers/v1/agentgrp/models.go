package agentgrp

import (
	"time"

	"github.com/compoundlabs/compounder/business/data/history"
	"github.com/compoundlabs/compounder/foundation/ledger"
)

type statusResponse struct {
	Account   string          `json:"account"`
	Node      ledger.Status   `json:"node"`
	NextWake  *time.Time      `json:"next_wake,omitempty"`
	LastCycle *history.Record `json:"last_cycle,omitempty"`
}

type planRequest struct {
	Years            float64 `json:"years" validate:"required,gt=0"`
	Rate             float64 `json:"rate" validate:"gt=-1"`
	AvgFees          float64 `json:"avg_fees" validate:"gte=0"`
	InitialPrincipal float64 `json:"initial_principal" validate:"gte=0"`
}

type planResponse struct {
	Principal   float64 `json:"principal"`
	Found       bool    `json:"found"`
	WaitSeconds float64 `json:"wait_seconds,omitempty"`
}
