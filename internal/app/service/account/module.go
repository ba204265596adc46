package account

import (
	"github.com/remedyhub/entitlement/pkg/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func newCachedStore(cfg *config.Config, db *gorm.DB) *CachedStore {
	return NewCachedStore(NewGormStore(db), cfg.Cache.Size, cfg.Cache.TTL)
}

// Module exposes the cached postgres store via Fx.
var Module = fx.Options(
	fx.Provide(newCachedStore),
	fx.Provide(func(s *CachedStore) Store { return s }),
)
