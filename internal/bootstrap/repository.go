package bootstrap

import (
	candleInfra "github.com/paperkite/paperkite/internal/infrastructure/questdb/candleseries"
)

// Repository is the persistence layer for the relay.
type Repository struct {
	CandleRepository candleInfra.CandleRepository
}

// registerRepository registers the repository.
func (b *Bootstrap) registerRepository() {
	b.Repository.CandleRepository = candleInfra.NewRepository(b.QuestDB)
}
