package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"wordduel/api/handlers"
	"wordduel/api/middleware"
	"wordduel/api/routes"
	"wordduel/config"
	"wordduel/db"
	"wordduel/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	conf := config.AppConfig
	log.Println("Starting server...", conf.ListenAddr(), "store:", conf.Store.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(conf)
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	var opts []services.Option
	if conf.Redis.Host != "" {
		redisClient, err := services.NewRedisClient(conf)
		if err != nil {
			log.Printf("Warning: Redis initialization failed, profile cache and counters disabled: %v", err)
		} else {
			defer redisClient.Close()
			opts = append(opts,
				services.WithProfileCache(services.NewRedisProfileCache(redisClient)),
				services.WithCounters(services.NewDuelCounters(redisClient)),
			)
		}
	}

	wsManager := services.NewWSConnManager()
	if conf.RabbitMQ.URL != "" {
		publisher, err := services.NewAMQPPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("Warning: RabbitMQ initialization failed, duel events disabled: %v", err)
		} else {
			defer publisher.Close()
			opts = append(opts, services.WithEventPublisher(publisher))
			if conf.RabbitMQ.Queue != "" {
				if err := publisher.StartConsumer(ctx, conf.RabbitMQ.Queue, wsManager); err != nil {
					log.Printf("Warning: duel event consumer not started: %v", err)
				}
			}
		}
	}

	game := services.NewGameService(store, services.NewLocalIdentityProvider(store), opts...)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("wordduel"))

	routes.PublicApi(router, handlers.NewHandler(game, wsManager))

	if err := router.Run(conf.ListenAddr()); err != nil {
		panic(err)
	}
}

func openStore(conf *config.ConfigSchema) (db.Store, error) {
	switch conf.Store.Driver {
	case "memory":
		return db.NewMemoryStore(), nil
	case "sqlite":
		orm, err := db.OpenSQLite(conf.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db.NewGormStore(orm), nil
	default:
		orm, err := db.ConnectDB(conf)
		if err != nil {
			return nil, err
		}
		return db.NewGormStore(orm), nil
	}
}
