package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	"github.com/franqia/console/internal/config"
	"github.com/franqia/console/internal/migration"
	"github.com/franqia/console/internal/observability"
	"github.com/franqia/console/internal/server"
	"github.com/franqia/console/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
