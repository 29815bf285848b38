package school

import (
	"github.com/franqia/console/internal/school/repository"
	"github.com/franqia/console/internal/school/service"
	"go.uber.org/fx"
)

var Module = fx.Module("school.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
