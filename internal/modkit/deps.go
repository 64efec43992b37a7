// Package modkit provides module wiring and core deps
package modkit

import (
	"tradein/internal/modkit/repokit"
	"tradein/internal/platform/config"
	"tradein/internal/platform/logger"
	"tradein/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore builds Deps off an opened store facade
func FromStore(cfg config.Conf, st *store.Store) Deps {
	return Deps{Log: st.Log, Cfg: cfg, PG: st.PG, CH: st.CH}
}
