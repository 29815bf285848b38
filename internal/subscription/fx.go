package subscription

import (
	"github.com/franqia/console/internal/subscription/repository"
	"github.com/franqia/console/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
