package lifecycle

import (
	"github.com/franqia/console/internal/lifecycle/repository"
	"github.com/franqia/console/internal/lifecycle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lifecycle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
