package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/recuerdos/tienda/internal/config"
	"github.com/recuerdos/tienda/internal/logger"
	"github.com/recuerdos/tienda/internal/server"
	"github.com/recuerdos/tienda/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
