package main

import (
	"fmt"

	"github.com/jeeves-ai/jeeves/pkg/backend"
	"github.com/jeeves-ai/jeeves/pkg/budget"
	cachepkg "github.com/jeeves-ai/jeeves/pkg/cache/sqlite"
	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/gateway"
	"github.com/jeeves-ai/jeeves/pkg/history"
	"github.com/jeeves-ai/jeeves/pkg/translate"
)

// wiring holds the assembled gateway and the stores that need closing.
type wiring struct {
	gateway  *gateway.Gateway
	cache    *cachepkg.Cache
	history  *history.Store
	enforcer *budget.Enforcer
}

func (w *wiring) close() {
	if w.cache != nil {
		_ = w.cache.Close()
	}
	if w.history != nil {
		_ = w.history.Close()
	}
}

// buildGateway assembles the gateway stack from configuration.
func buildGateway(cfg *config.Config) (*wiring, error) {
	caller, err := backend.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("init backend: %w", err)
	}

	w := &wiring{}

	if cfg.Cache.Enabled {
		w.cache, err = cachepkg.New(cfg.DBPath, cfg.Cache.ExpireTime)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}

	w.history, err = history.New(cfg.DBPath)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("init history: %w", err)
	}

	if cfg.Budget.Enabled {
		w.enforcer = budget.New(cfg.Budget, w.history)
	}

	var translator translate.Translator
	if cfg.Translation.Enabled {
		translator = translate.New(cfg.Translation)
	}

	var cache gateway.Cache
	if w.cache != nil {
		cache = w.cache
	}
	w.gateway = gateway.New(cfg, caller, cache, translator, w.enforcer, w.history)
	return w, nil
}
