package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	mw "github.com/remedyhub/entitlement/internal/app/api/middleware"
	"github.com/remedyhub/entitlement/internal/app/service/entitlement"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/response"
	"github.com/remedyhub/entitlement/pkg/types"
)

// CatalogFeature is one catalog entry plus the tiers that unlock it.
type CatalogFeature struct {
	types.FeatureMeta
	Tiers []types.SubscriptionTier `json:"tiers"`
}

type CatalogResponse struct {
	Tiers    []types.SubscriptionTier `json:"tiers"`
	Features []CatalogFeature         `json:"features"`
}

type FeatureCheckResponse struct {
	Feature       types.Feature            `json:"feature"`
	DisplayName   string                   `json:"display_name,omitempty"`
	Allowed       bool                     `json:"allowed"`
	RequiredTier  types.SubscriptionTier   `json:"required_tier"`
	EffectiveTier types.SubscriptionTier   `json:"effective_tier"`
	Status        types.SubscriptionStatus `json:"status"`
}

func catalog() *CatalogResponse {
	return &CatalogResponse{
		Tiers: types.Tiers,
		Features: lo.Map(types.AllFeatures(), func(m types.FeatureMeta, _ int) CatalogFeature {
			return CatalogFeature{
				FeatureMeta: m,
				Tiers:       lo.Filter(types.Tiers, func(t types.SubscriptionTier, _ int) bool { return t.AtLeast(m.RequiredTier) }),
			}
		}),
	}
}

// @Summary      Feature catalog
// @Description  Lists every gated feature with its minimum tier.
// @Tags         Features
// @Produce      json
// @Success      200  {object}  handlers.RespCatalog
// @Router       /api/v1/features [get]
func ApiListFeatures() gin.HandlerFunc {
	res := catalog()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      My entitlements
// @Description  Returns the caller's entitlement view computed at request time.
// @Tags         Features
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespView
// @Router       /api/v1/me/entitlements [get]
func ApiMyEntitlements(svc *entitlement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.View(c.Request.Context(), mw.UserID(c), time.Now())
		if err != nil {
			// the fail-closed view is still returned
			logctx.FromGin(c, log).Errorw("failed to load entitlements", "err", err)
		}
		c.JSON(http.StatusOK, response.OKT(view))
	}
}

// @Summary      Check a feature
// @Description  Reports whether the caller may use the feature right now. Any uncertainty reads as not allowed.
// @Tags         Features
// @Produce      json
// @Security     BearerAuth
// @Param        feature  path  string  true  "Feature id"
// @Success      200  {object}  handlers.RespFeatureCheck
// @Router       /api/v1/me/features/{feature} [get]
func ApiCheckFeature(svc *entitlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		feature, err := types.ParseFeature(c.Param("feature"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorMsgT(response.APIResponseCodeBadRequest, err.Error(),
				&FeatureCheckResponse{Feature: types.Feature(c.Param("feature"))}))
			return
		}
		meta, _ := types.FeatureInfo(feature)
		view, allowed := svc.Check(c.Request.Context(), mw.UserID(c), feature, time.Now())
		c.JSON(http.StatusOK, response.OKT(&FeatureCheckResponse{
			Feature:       feature,
			DisplayName:   meta.DisplayName,
			Allowed:       allowed,
			RequiredTier:  meta.RequiredTier,
			EffectiveTier: view.EffectiveTier,
			Status:        view.Status,
		}))
	}
}

func RegisterFeatureRoutes(pub gin.IRouter, me gin.IRouter, svc *entitlement.Service, log *zap.SugaredLogger) {
	pub.GET("/features", ApiListFeatures())
	me.GET("/entitlements", ApiMyEntitlements(svc, log))
	me.GET("/features/:feature", ApiCheckFeature(svc))
}
