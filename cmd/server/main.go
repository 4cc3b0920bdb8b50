package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/sultonabiev/task-management/internal/auth/http"
	"github.com/sultonabiev/task-management/internal/common/bootstrap"
	commonhttp "github.com/sultonabiev/task-management/internal/common/http"
	"github.com/sultonabiev/task-management/internal/common/server"
	taskhttp "github.com/sultonabiev/task-management/internal/task/http"
)

func main() {
	app, err := bootstrap.NewApp()
	if err != nil {
		panic(err)
	}
	log := app.Log

	if err := app.Credentials.EnsureAdmin(context.Background()); err != nil {
		log.Fatalf("failed to ensure admin account: %v", err)
	}

	authHandler := authhttp.NewHandler(app.Credentials, app.Config.JWTSecret, app.Config.RequestTimeout, log)
	taskHandler := taskhttp.NewHandler(app.Tasks, app.Credentials, app.Config.JWTSecret, app.Config.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authHandler)
	mux.Handle("/api/users", authHandler)
	mux.Handle("/api/users/", authHandler)
	mux.Handle("/api/tasks", taskHandler)
	mux.Handle("/api/tasks/", taskHandler)
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	handler := commonhttp.BuildBaseHandler(log, mux)
	srv := server.NewServer(server.DefaultServerConfig(app.Config.HTTPPort), handler)

	server.StartWithGracefulShutdownAndHooks(srv, log, "taskmanager", []server.ShutdownHook{
		func(ctx context.Context) error {
			app.Pool.Close()
			return nil
		},
	})
}
