package main

import (
	"log"

	"lumos/config"
	"lumos/database"
	"lumos/gateway"
	"lumos/logger"
	"lumos/routers"
	"lumos/utils"
)

func main() {
	config.LoadConfig()
	logger.Init(config.AppConfig)
	defer logger.Close()

	database.ConnectDb()
	utils.SetupMailer(config.AppConfig)
	gateway.Default = gateway.NewFromConfig(config.AppConfig)

	scheduler := utils.StartPaymentScheduler(config.AppConfig)
	defer scheduler.Stop()

	app := routers.New(false)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logger.Error(err, "server stopped", nil)
		log.Fatal(err)
	}
}
