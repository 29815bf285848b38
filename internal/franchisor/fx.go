package franchisor

import (
	"github.com/franqia/console/internal/franchisor/repository"
	"github.com/franqia/console/internal/franchisor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("franchisor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
