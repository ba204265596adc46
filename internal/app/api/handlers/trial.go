package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/remedyhub/entitlement/internal/app/api/middleware"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/response"
	"github.com/remedyhub/entitlement/pkg/types"
)

// CountdownEvent is the payload of one server-sent countdown event.
type CountdownEvent struct {
	State            types.TrialState `json:"state"`
	RemainingSeconds int64            `json:"remaining_seconds"`
	Expired          bool             `json:"expired"`
	At               time.Time        `json:"at"`
}

// @Summary      Start trial
// @Description  Starts the caller's one-time trial. Returns code 40900 with the current trial when it was already used.
// @Tags         Trial
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespTrialStatus
// @Router       /api/v1/me/trial [post]
func ApiStartTrial(svc *trial.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.StartTrial(c.Request.Context(), mw.UserID(c))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, response.OKT(trial.Describe(rec, time.Now())))
		case errors.Is(err, trial.ErrTrialAlreadyUsed):
			c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeTrialAlreadyUsed, trial.Describe(rec, time.Now())))
		default:
			logctx.FromGin(c, log).Errorw("failed to start trial", "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
		}
	}
}

// @Summary      Trial status
// @Description  Returns the caller's trial state and remaining time.
// @Tags         Trial
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespTrialStatus
// @Router       /api/v1/me/trial [get]
func ApiTrialStatus(svc *trial.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Status(c.Request.Context(), mw.UserID(c))
		if err != nil {
			logctx.FromGin(c, log).Errorw("failed to load trial", "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(st))
	}
}

// @Summary      Trial countdown
// @Description  Streams "tick" events while the trial is active and a final "expired" event when it ends.
// @Tags         Trial
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {object}  handlers.CountdownEvent
// @Router       /api/v1/me/trial/countdown [get]
func ApiTrialCountdown(svc *trial.Service, interval time.Duration, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := mw.UserID(c)
		lg := logctx.FromGin(c, log)
		w := trial.NewWatcher(interval, func(ctx context.Context) (types.TrialRecord, error) {
			return svc.Record(ctx, userID)
		}, lg)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		err := w.Run(c.Request.Context(), func(tk trial.Tick) bool {
			event := "tick"
			if tk.Expired {
				event = "expired"
			}
			c.SSEvent(event, CountdownEvent{
				State:            tk.State,
				RemainingSeconds: int64(tk.Remaining.Seconds()),
				Expired:          tk.Expired,
				At:               tk.At,
			})
			c.Writer.Flush()
			// nothing left to count once the trial is not running
			return tk.State == types.TrialStateActive
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			lg.Warnw("trial countdown stopped", "err", err)
		}
	}
}

func RegisterTrialRoutes(r gin.IRouter, svc *trial.Service, interval time.Duration, limiter *mw.RateLimiter, log *zap.SugaredLogger) {
	r.POST("/trial", limiter.Middleware(), ApiStartTrial(svc, log))
	r.GET("/trial", ApiTrialStatus(svc, log))
	r.GET("/trial/countdown", ApiTrialCountdown(svc, interval, log))
}
