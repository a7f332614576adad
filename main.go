package main

import (
	"log"

	"github.com/judgegodwins/chess-relay/api"
	"github.com/judgegodwins/chess-relay/util"
	"go.uber.org/zap"
)

func main() {
	util.InitValidator()

	config, err := util.LoadConfig()

	if err != nil {
		log.Fatal(err)
	}

	logger, err := util.NewLogger(config.Env)

	if err != nil {
		log.Fatal(err)
	}

	defer logger.Sync()

	server, err := api.NewServer(config, logger)

	if err != nil {
		logger.Fatal("cannot create server", zap.Error(err))
	}

	if err := server.Start(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
