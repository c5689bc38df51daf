package main

import (
	"log"
	"os"

	"lumos/config"
	"lumos/database"
	"lumos/logger"
)

func main() {
	config.LoadConfig()
	logger.Init(config.AppConfig)
	defer logger.Close()

	database.ConnectDb()

	cli := commandLine{db: database.Database.Db, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
