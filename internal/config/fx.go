package config

import "go.uber.org/fx"

// Module wires application and report configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewReportConfigHolder,
	),
)
