package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/remedyhub/entitlement/internal/app/api/middleware"
	"github.com/remedyhub/entitlement/internal/app/service/identity"
	"github.com/remedyhub/entitlement/internal/app/service/intent"
	"github.com/remedyhub/entitlement/internal/app/service/session"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/response"
	"github.com/remedyhub/entitlement/pkg/types"
)

const SessionIDHeader = "X-Session-ID"

type RecordIntentRequest struct {
	Kind intent.Kind `json:"kind" binding:"required"`
	Tier string      `json:"tier"`
}

// SignInBody carries the identity token when it is not sent as a bearer header.
type SignInBody struct {
	Token string `json:"token"`
}

func sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(SessionIDHeader))
}

// @Summary      Record sign-in intent
// @Description  Remembers an action requested before authentication, keyed by the X-Session-ID header. It is honored once by the next sign-in of that session.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Browser session id"
// @Param        request body handlers.RecordIntentRequest true "Intent"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/session/intent [post]
func ApiRecordIntent(bridge *session.Bridge, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionID(c)
		if sid == "" {
			c.JSON(http.StatusOK, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "missing "+SessionIDHeader, nil))
			return
		}
		var req RecordIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		in := intent.Intent{Kind: req.Kind, Tier: types.SubscriptionTier(req.Tier), RecordedAt: time.Now()}
		if err := in.Validate(); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := bridge.RecordIntent(c.Request.Context(), sid, in); err != nil {
			logctx.FromGin(c, log).Errorw("failed to record intent", "kind", in.Kind, "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(in))
	}
}

// @Summary      Sign in
// @Description  Verifies the identity token, syncs the local account and honors a pending intent. Sync failures still sign the user in with the anonymous view and synced=false.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Browser session id"
// @Param        request body handlers.SignInBody false "Token, if not sent as Authorization: Bearer"
// @Success      200  {object}  handlers.RespSignIn
// @Router       /api/v1/session/sign_in [post]
func ApiSignIn(bridge *session.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := mw.BearerToken(c)
		if token == "" {
			var body SignInBody
			if c.Request.ContentLength != 0 {
				if err := c.ShouldBindJSON(&body); err != nil {
					c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
					return
				}
			}
			token = body.Token
		}
		res := bridge.SignIn(c.Request.Context(), session.SignInRequest{Token: token, SessionID: sessionID(c)})
		if res.Kind == session.ResultKindError {
			c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeUnauthenticated, res))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Sign out
// @Description  Drops cached entitlements of the token's user and returns the anonymous view.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  handlers.RespView
// @Router       /api/v1/session/sign_out [post]
func ApiSignOut(bridge *session.Bridge, v identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID string
		// an unverifiable token still signs out locally
		if id, err := v.Verify(c.Request.Context(), mw.BearerToken(c)); err == nil {
			userID = id.UserID
		}
		c.JSON(http.StatusOK, response.OKT(bridge.SignOut(c.Request.Context(), userID)))
	}
}

func RegisterSessionRoutes(r gin.IRouter, bridge *session.Bridge, v identity.Verifier, limiter *mw.RateLimiter, log *zap.SugaredLogger) {
	r.POST("/intent", ApiRecordIntent(bridge, log))
	r.POST("/sign_in", limiter.Middleware(), ApiSignIn(bridge))
	r.POST("/sign_out", ApiSignOut(bridge, v))
}
