package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"opengalaxy/cache"
	configs "opengalaxy/config"
	"opengalaxy/handler"
	"opengalaxy/logger"
	"opengalaxy/mongoconn"
	"opengalaxy/natsclient"
	"opengalaxy/notify"
	"opengalaxy/render"
	"opengalaxy/repository"
	"opengalaxy/security"
	"opengalaxy/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const traceStartup = "startup"

func main() {
	configValues := configs.LoadConfig()

	log, err := logger.New(configValues.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	fatal := func(msg string, err error) {
		log.Log(zapcore.FatalLevel, traceStartup, msg, nil, "MAIN", err)
	}

	ctx := context.Background()

	var mongoclientInstance *mongo.Client
	var repoInstance repository.Repositories
	if strings.EqualFold(configValues.StoreKind, "memory") {
		repoInstance = repository.NewMemoryRepository()
		log.Log(zapcore.WarnLevel, traceStartup, "Using in-memory store; data is lost on restart", nil, "MAIN", nil)
	} else {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoclientInstance, err = mongoconn.ConnectDB(connectCtx, configValues.MongoDBURL)
		cancel()
		if err != nil {
			fatal("Failed to connect to MongoDB", err)
		}
		if err := repository.EnsureIndexes(ctx, mongoclientInstance, configValues.MongoDBName); err != nil {
			fatal("Failed to create MongoDB indexes", err)
		}
		repoInstance = repository.NewRepository(mongoclientInstance, configValues.MongoDBName)
	}

	var cacheInstance cache.Cache = cache.NewMemoryCache()
	redisCache := cache.NewRedisCache(configValues.RedisURL, configValues.RedisPassword, configValues.RedisDB, log)
	if err := redisCache.Ping(ctx); err != nil {
		log.Log(zapcore.WarnLevel, traceStartup, "Redis unavailable, caching in memory", map[string]any{"addr": configValues.RedisURL}, "MAIN", err)
		redisCache.Close()
		redisCache = nil
	} else {
		cacheInstance = redisCache
	}

	var sender notify.Sender = notify.LogSender{Logger: log}
	if configValues.MailUsername != "" {
		sender = notify.NewMailer(configValues.MailHost, configValues.MailPort, configValues.MailUsername, configValues.MailPassword, configValues.MailFrom)
	}
	deliverer := notify.NewDeliverer(repoInstance.Users, sender, log)

	var dispatcher notify.Dispatcher
	var directDispatcher *notify.DirectDispatcher
	natsClient, err := natsclient.NewNatsClient(configValues.NATSURL)
	if err != nil {
		log.Log(zapcore.WarnLevel, traceStartup, "NATS unavailable, delivering notifications in-process", map[string]any{"url": configValues.NATSURL}, "MAIN", err)
		directDispatcher = notify.NewDirectDispatcher(deliverer)
		dispatcher = directDispatcher
	} else {
		if _, err := notify.NewSubscriber(deliverer, log).Start(natsClient); err != nil {
			fatal("Failed to subscribe to notification events", err)
		}
		dispatcher = notify.NewNatsDispatcher(natsClient, log)
	}

	tokens := security.NewTokenIssuer(configValues.JWTSecret, configValues.JWTExp)

	serviceInstance := service.NewServices(service.Deps{
		Repos:      repoInstance,
		Cache:      cacheInstance,
		Dispatcher: dispatcher,
		PDF:        render.NewChromePDF(configValues.ChromePath),
		Tokens:     tokens,
		OAuth:      service.NewGithubOAuthConfig(configValues.GithubClientID, configValues.GithubClientSecret, configValues.GithubRedirectURL),
		Logger:     log,
		BaseURL:    configValues.BaseURL,
		Location:   configValues.Location(),
	})

	if err := serviceInstance.Leaderboard.WarmIfCold(ctx); err != nil {
		log.Log(zapcore.WarnLevel, traceStartup, "Leaderboard warm-up failed", nil, "MAIN", err)
	}
	cronJob, err := serviceInstance.Leaderboard.StartCronJob()
	if err != nil {
		fatal("Failed to schedule leaderboard refresh", err)
	}

	// gRPC health endpoint for orchestrators
	lis, err := net.Listen("tcp", ":"+configValues.HealthGRPCPort)
	if err != nil {
		fatal("Failed to listen on health port "+configValues.HealthGRPCPort, err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Log(zapcore.ErrorLevel, traceStartup, "gRPC health server stopped", nil, "MAIN", err)
		}
	}()

	router := handler.NewRouter(serviceInstance, tokens, handler.RouterConfig{
		CORSOrigins:   configValues.CORSOrigins,
		FrontendURL:   configValues.FrontendURL,
		SecureCookies: strings.HasPrefix(configValues.BaseURL, "https://"),
		TokenTTL:      configValues.JWTExp,
	}, log)

	server := &http.Server{
		Addr:         ":" + configValues.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Log(zapcore.InfoLevel, traceStartup, "HTTP server running", map[string]any{
			"port":       configValues.HTTPPort,
			"healthPort": configValues.HealthGRPCPort,
		}, "MAIN", nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Failed to serve HTTP", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Log(zapcore.InfoLevel, traceStartup, "Shutting down", nil, "MAIN", nil)

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Log(zapcore.ErrorLevel, traceStartup, "HTTP server forced to shutdown", nil, "MAIN", err)
	}
	<-cronJob.Stop().Done()
	grpcServer.GracefulStop()

	if natsClient != nil {
		natsClient.Close()
	}
	if directDispatcher != nil {
		directDispatcher.Wait()
	}
	if redisCache != nil {
		redisCache.Close()
	}
	if mongoclientInstance != nil {
		if err := mongoclientInstance.Disconnect(shutdownCtx); err != nil {
			log.Log(zapcore.ErrorLevel, traceStartup, "MongoDB disconnect failed", nil, "MAIN", err)
		}
	}
	log.Log(zapcore.InfoLevel, traceStartup, "Server exited", nil, "MAIN", nil)
}
