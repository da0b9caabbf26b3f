package main

import (
	"go.uber.org/zap"

	"github.com/cppla/intranet/config"
	"github.com/cppla/intranet/models"
	"github.com/cppla/intranet/routes"
	"github.com/cppla/intranet/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, utils.Logger, models.All()...)
	if err != nil {
		utils.Logger.Fatal("database initialization failed", zap.Error(err))
	}

	rc := utils.NewRedis(cfg)
	if rc != nil {
		defer rc.Close()
	}

	r := routes.SetupRouter(db, rc, cfg)

	utils.Sugar.Infof("Starting %s on %s (graceful)", cfg.AppName, cfg.Addr())
	if err := utils.GraceServer(cfg.Addr(), r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
