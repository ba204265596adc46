package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/remedyhub/entitlement/internal/app/service/statistics"
	subsvc "github.com/remedyhub/entitlement/internal/app/service/subscription"
	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/response"
	"github.com/remedyhub/entitlement/pkg/types"
)

type SubscriptionEventResponse struct {
	Applied     bool                    `json:"applied"`
	Entitlement *models.UserEntitlement `json:"entitlement"`
}

// @Summary      Apply Subscription Event (Admin)
// @Description  Applies a normalized tier/status change from the payment processor. Events older than the current state are acknowledged with applied=false.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request body subscription.Event true "Subscription event"
// @Success      200  {object}  handlers.RespSubscriptionEvent
// @Router       /api/v1/admin/subscription_event [post]
func ApiSubscriptionEvent(h *subsvc.EventHandler, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ev subsvc.Event
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		rec, applied, err := h.HandleEvent(c.Request.Context(), ev)
		if err != nil {
			if errors.Is(err, subsvc.ErrInvalidEvent) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			logctx.FromGin(c, log).Errorw("subscription event failed", "event_id", ev.EventID, "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&SubscriptionEventResponse{Applied: applied, Entitlement: rec}))
	}
}

// @Summary      List Entitlements (Admin)
// @Description  Retrieves a paginated and filterable list of user entitlement records.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request body subscription.ScanEntitlementsRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListEntitlements
// @Router       /api/v1/admin/list_entitlements [post]
func ApiListEntitlements(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.ScanEntitlementsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := sub.ScanEntitlements(c.Request.Context(), &req)
		if err != nil {
			code := response.APIResponseCodeError
			if errors.Is(err, types.ErrInvalidFilter) {
				code = response.APIResponseCodeBadRequest
			}
			c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get Entitlement Statistics (Admin)
// @Description  Computes the requested statistics concurrently.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request body statistics.StatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistic
// @Router       /api/v1/admin/get_statistic [post]
func ApiGetStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, h *subsvc.EventHandler, sub *subsvc.Service, stats *statistics.Service, log *zap.SugaredLogger) {
	r.POST("/subscription_event", ApiSubscriptionEvent(h, log))
	r.POST("/list_entitlements", ApiListEntitlements(sub))
	r.POST("/get_statistic", ApiGetStatistic(stats))
}
