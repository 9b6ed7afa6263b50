// Package bootstrap wires clients, repositories and usecases into a
// single container the commands build their session from.
package bootstrap

import (
	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/internal/stream"
	"github.com/paperkite/paperkite/pkg/logger"
	"github.com/paperkite/paperkite/pkg/questdb"
	"github.com/paperkite/paperkite/pkg/redis"
)

// Bootstrap is the dependency container for the relay.
type Bootstrap struct {
	Usecase    Usecase
	Logger     logger.Interface
	Repository Repository
	Hub        *stream.Hub

	QuestDB questdb.Client
	Redis   redis.Client
	Broker  kite.Broker
}

// BootstrapConfig is the config for the bootstrap.
type BootstrapConfig struct {
	QuestDB questdb.Client
	Redis   redis.Client
	Broker  kite.Broker
	Logger  logger.Interface

	InstrumentKeyPrefix string
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config BootstrapConfig) Bootstrap {
	b.QuestDB = config.QuestDB
	b.Redis = config.Redis
	b.Broker = config.Broker
	b.Logger = config.Logger
	b.Hub = stream.NewHub(config.Logger)

	b.registerRepository()
	b.registerUsecase(config)

	return *b
}
