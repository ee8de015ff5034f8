package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fruitables/fruitables/config"
	"github.com/fruitables/fruitables/internal/adminapi"
	"github.com/fruitables/fruitables/internal/app"
	"github.com/fruitables/fruitables/internal/shopapi"
	"github.com/fruitables/fruitables/internal/webserver"
)

var (
	confFile = flag.String("c", "fruitables.yml", "config file")
	initDB   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("fruitables", version)
		return
	}

	cfg := config.LoadConfig(*confFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDB {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	server := webserver.NewWebServer(cfg)

	api := server.Echo().Group("/api/catalog")
	adminapi.NewProductHandler(application.Catalog()).Register(api)
	adminapi.NewTagHandler(application.Tags()).Register(api)
	adminapi.NewCategoryHandler(application.Categories()).Register(api)

	sys := server.Echo().Group("/api")
	adminapi.NewSystemHandler(application.DB()).Register(sys)

	shopGroup := server.Echo().Group("/shop")
	shopapi.NewShopHandler(application.Shop()).Register(shopGroup)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zap.S().Fatalf("web server error: %v", err)
		}
	case sig := <-sigChan:
		zap.S().Infof("received signal %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zap.S().Errorf("shutdown error: %v", err)
		}
	}
}
