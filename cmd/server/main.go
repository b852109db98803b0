package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/api/route"
	"github.com/mamaepingo/voice-eval/bootstrap"
)

func main() {
	app, err := bootstrap.App()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	if app.Env.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	route.Setup(app, engine)

	server := &http.Server{
		Addr:    app.Env.ServerAddress,
		Handler: engine,
	}

	go func() {
		app.Logger.Info("server listening", zap.String("address", app.Env.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.Logger.Error("shutdown failed", zap.Error(err))
	}
}
