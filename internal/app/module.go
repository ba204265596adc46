package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/remedyhub/entitlement/internal/app/api/server"
	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/app/service/changelog"
	"github.com/remedyhub/entitlement/internal/app/service/entitlement"
	"github.com/remedyhub/entitlement/internal/app/service/identity"
	"github.com/remedyhub/entitlement/internal/app/service/intent"
	"github.com/remedyhub/entitlement/internal/app/service/session"
	"github.com/remedyhub/entitlement/internal/app/service/statistics"
	"github.com/remedyhub/entitlement/internal/app/service/subscription"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/internal/platform/db"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	changelog.Module,
	account.Module,
	trial.Module,
	entitlement.Module,
	subscription.Module,
	statistics.Module,
	identity.Module,
	intent.Module,
	session.Module,
	server.Module,
)
