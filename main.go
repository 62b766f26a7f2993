package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"viewtrack/internal/config"
	"viewtrack/internal/db"
	"viewtrack/internal/http/handlers"
	appmw "viewtrack/internal/http/middleware"
	"viewtrack/internal/poller"
	"viewtrack/internal/source"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	poller.InitPrometheusMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := source.NewYouTube(cfg.YouTubeAPIKey)
	if cfg.YouTubeAPIKey == "" {
		log.Printf("warning: APP_YOUTUBE_API_KEY not set, statistics will not update")
	}
	go poller.New(gormDB, src, cfg).Run(ctx)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.GET("/", handlers.Viewer(gormDB, cfg))
	r.GET("/metrics", handlers.PrometheusMetrics())

	admin := appmw.AdminAuth(cfg)
	r.GET("/v1/videos", handlers.ListVideos(gormDB))
	r.POST("/v1/videos", admin(handlers.AddVideo(gormDB)))
	r.POST("/v1/videos/{id}/pause", admin(handlers.PauseVideo(gormDB)))
	r.POST("/v1/videos/{id}/resume", admin(handlers.ResumeVideo(gormDB)))
	r.DELETE("/v1/videos/{id}", admin(handlers.RemoveVideo(gormDB)))

	r.GET("/v1/videos/{id}/dates", handlers.SampleDates(gormDB))
	r.GET("/v1/videos/{id}/history", handlers.History(gormDB, cfg))
	r.GET("/v1/videos/{id}/total", handlers.DailyTotal(gormDB, cfg))

	srv := &fasthttp.Server{Handler: handlers.RequestLogger(r.Handler)}

	go func() {
		<-ctx.Done()
		log.Printf("shutting down")
		_ = srv.Shutdown()
	}()

	log.Printf("viewtrack listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
