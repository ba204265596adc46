package handlers

import (
	"github.com/remedyhub/entitlement/internal/app/service/entitlement"
	"github.com/remedyhub/entitlement/internal/app/service/session"
	"github.com/remedyhub/entitlement/internal/app/service/statistics"
	subsvc "github.com/remedyhub/entitlement/internal/app/service/subscription"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/pkg/response"
)

// Concrete envelopes for swag, which cannot render response.APIResponse[T].

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespCatalog struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CatalogResponse          `json:"data"`
}

type RespView struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    entitlement.View         `json:"data"`
}

type RespFeatureCheck struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    FeatureCheckResponse     `json:"data"`
}

type RespTrialStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    trial.Status             `json:"data"`
}

type RespSignIn struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    session.SignInResult     `json:"data"`
}

type RespSubscriptionEvent struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    SubscriptionEventResponse `json:"data"`
}

// RespListEntitlements wraps ScanEntitlementsResponse in the standard envelope.
type RespListEntitlements struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    subsvc.ScanEntitlementsResponse `json:"data"`
}

type RespStatistic struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.StatisticResponse `json:"data"`
}
