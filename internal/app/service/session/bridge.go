package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/app/service/changelog"
	"github.com/remedyhub/entitlement/internal/app/service/entitlement"
	"github.com/remedyhub/entitlement/internal/app/service/identity"
	"github.com/remedyhub/entitlement/internal/app/service/intent"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/metrics"
	"github.com/remedyhub/entitlement/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ResultKind tags the outcome of a sign-in.
type ResultKind string

const (
	ResultKindAuthenticated ResultKind = "authenticated"
	ResultKindRedirect      ResultKind = "redirect"
	ResultKindError         ResultKind = "error"
)

type SignInRequest struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

// TrialOutcome reports what happened to a pending start-trial intent.
type TrialOutcome struct {
	Started     bool         `json:"started"`
	AlreadyUsed bool         `json:"already_used"`
	Error       string       `json:"error,omitempty"`
	Status      trial.Status `json:"status"`
}

// SignInResult is a tagged value. Identity and View are set for authenticated
// and redirect results; RedirectURL only for redirect; Reason only for error.
type SignInResult struct {
	Kind        ResultKind         `json:"kind"`
	Identity    *identity.Identity `json:"identity,omitempty"`
	View        *entitlement.View  `json:"view,omitempty"`
	Synced      bool               `json:"synced"`
	Trial       *TrialOutcome      `json:"trial,omitempty"`
	RedirectURL string             `json:"redirect_url,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Err         error              `json:"-"`
}

type Params struct {
	fx.In

	Config       *config.Config
	Verifier     identity.Verifier
	Store        account.Store
	Trials       *trial.Service
	Entitlements *entitlement.Service
	Intents      intent.Store
	Changelog    *changelog.Service
	Logger       *zap.SugaredLogger
}

// Bridge turns an identity-provider sign-in into local entitlement state.
type Bridge struct {
	verifier     identity.Verifier
	store        account.Store
	trials       *trial.Service
	entitlements *entitlement.Service
	intents      intent.Store
	changelog    *changelog.Service
	checkoutURL  string
	log          *zap.SugaredLogger
	now          func() time.Time
}

func NewBridge(p Params) *Bridge {
	return &Bridge{
		verifier:     p.Verifier,
		store:        p.Store,
		trials:       p.Trials,
		entitlements: p.Entitlements,
		intents:      p.Intents,
		changelog:    p.Changelog,
		checkoutURL:  p.Config.Checkout.URL,
		log:          p.Logger,
		now:          time.Now,
	}
}

// SignIn verifies the token, syncs the local record and honors at most one
// pending intent. When verification succeeds but sync fails the identity is
// still returned with the fail-closed view and Synced=false.
func (b *Bridge) SignIn(ctx context.Context, req SignInRequest) (res SignInResult) {
	lg := logctx.FromCtx(ctx, b.log)
	defer func() { metrics.SignIn(string(res.Kind), res.Synced) }()

	id, err := b.verifier.Verify(ctx, req.Token)
	if err != nil || !id.Verified {
		if err == nil {
			err = identity.ErrInvalidToken
		}
		lg.Infow("sign-in rejected", "err", err)
		return SignInResult{Kind: ResultKindError, Reason: "invalid identity token", Err: err}
	}
	lg = lg.With("user_id", id.UserID)

	rec, created, err := b.store.GetOrCreate(ctx, id.UserID)
	if err != nil {
		// pending intents stay recorded so a retried sign-in can honor them
		lg.Errorw("sign-in sync failed", "err", err)
		view := b.entitlements.Anonymous(b.now())
		view.UserID = id.UserID
		return SignInResult{Kind: ResultKindAuthenticated, Identity: &id, View: &view, Synced: false}
	}
	if created {
		b.changelog.SaveSubscriptionLog(ctx, id.UserID, nil, rec, types.SubscriptionChangeReasonAccountCreate)
		lg.Infow("account created on sign-in")
	}

	res = SignInResult{Kind: ResultKindAuthenticated, Identity: &id, Synced: true}

	if req.SessionID != "" {
		in, err := b.intents.Consume(ctx, req.SessionID)
		switch {
		case errors.Is(err, intent.ErrNoIntent):
		case err != nil:
			lg.Warnw("failed to consume sign-in intent", "session_id", req.SessionID, "err", err)
		default:
			b.honor(ctx, lg, id.UserID, in, &res)
		}
	}

	now := b.now()
	view, err := b.entitlements.View(ctx, id.UserID, now)
	if err != nil {
		lg.Errorw("failed to load entitlements after sign-in", "err", err)
		view = b.entitlements.Anonymous(now)
		view.UserID = id.UserID
		res.Synced = false
	}
	res.View = &view
	return res
}

func (b *Bridge) honor(ctx context.Context, lg *zap.SugaredLogger, userID string, in intent.Intent, res *SignInResult) {
	switch in.Kind {
	case intent.KindStartTrial:
		rec, err := b.trials.StartTrial(ctx, userID)
		out := &TrialOutcome{Status: trial.Describe(rec, b.now())}
		switch {
		case err == nil:
			out.Started = true
		case errors.Is(err, trial.ErrTrialAlreadyUsed):
			out.AlreadyUsed = true
		default:
			lg.Errorw("failed to start trial from intent", "err", err)
			out.Error = "failed to start trial"
		}
		res.Trial = out
	case intent.KindCheckout:
		u, err := checkoutRedirect(b.checkoutURL, in.Tier)
		if err != nil {
			lg.Errorw("failed to build checkout redirect", "err", err)
			return
		}
		res.Kind = ResultKindRedirect
		res.RedirectURL = u
	}
}

func checkoutRedirect(base string, tier types.SubscriptionTier) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid checkout url: %w", err)
	}
	q := u.Query()
	q.Set("tier", string(tier))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SignOut drops the cached record immediately and returns the anonymous view.
func (b *Bridge) SignOut(ctx context.Context, userID string) entitlement.View {
	if userID != "" {
		b.entitlements.Invalidate(userID)
		logctx.FromCtx(ctx, b.log).Infow("signed out, entitlement cache invalidated", "user_id", userID)
	}
	return b.entitlements.Anonymous(b.now())
}

// RecordIntent stores an action requested before authentication completes.
func (b *Bridge) RecordIntent(ctx context.Context, sessionID string, in intent.Intent) error {
	return b.intents.Record(ctx, sessionID, in)
}
