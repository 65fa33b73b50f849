//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"chatlink/internal/api"
	"chatlink/internal/cache"
	"chatlink/internal/config"
	"chatlink/internal/dbsqlite"
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		ProvideLogger,
		ProvideTokenStore,
		dbsqlite.NewSQLite,
		cache.NewRepository,
		api.NewClient,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
