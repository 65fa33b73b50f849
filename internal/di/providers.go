package di

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"chatlink/internal/api"
	"chatlink/internal/auth"
	"chatlink/internal/cache"
	"chatlink/internal/config"
	"chatlink/internal/logging"
)

type Application struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *gorm.DB
	Cache  cache.Repository
	Tokens *auth.Store
	API    *api.Client
}

func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideTokenStore keeps the token file next to the cache database.
func ProvideTokenStore(cfg *config.Config) *auth.Store {
	return auth.NewStore(filepath.Dir(cfg.Database.Path))
}
