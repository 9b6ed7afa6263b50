package bootstrap

import (
	"github.com/paperkite/paperkite/internal/instrument"
	historyUc "github.com/paperkite/paperkite/internal/usecase/history"
)

// Usecase holds the application services for the relay.
type Usecase struct {
	HistoryUsecase *historyUc.Usecase
	Instruments    *instrument.Cache
}

// registerUsecase registers the usecase.
func (b *Bootstrap) registerUsecase(config BootstrapConfig) {
	b.Usecase.HistoryUsecase = historyUc.NewUsecase(b.Broker, b.Repository.CandleRepository, b.Logger)
	b.Usecase.Instruments = instrument.NewCache(b.Logger, b.Redis, config.InstrumentKeyPrefix)
}
