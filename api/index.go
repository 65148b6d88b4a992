package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/agenda-api-go/pkg/app"
	"github.com/arnavshah/agenda-api-go/pkg/config"
	"github.com/arnavshah/agenda-api-go/pkg/logger"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadEnvFiles(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	gin.SetMode(gin.ReleaseMode)

	// Serverless instances never shut down cleanly, so the redis client
	// lives as long as the process.
	h, _, err := app.New(context.Background(), cfg, zlog, nil)
	if err != nil {
		zlog.Fatal("could not initialise", zap.Error(err))
	}
	r = h.NewRouter()
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
