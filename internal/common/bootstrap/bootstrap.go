package bootstrap

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	authservice "github.com/sultonabiev/task-management/internal/auth/service"
	"github.com/sultonabiev/task-management/internal/common/clock"
	"github.com/sultonabiev/task-management/internal/common/config"
	commoncrypto "github.com/sultonabiev/task-management/internal/common/crypto"
	"github.com/sultonabiev/task-management/internal/common/db"
	"github.com/sultonabiev/task-management/internal/common/logger"
	taskrepo "github.com/sultonabiev/task-management/internal/task/repository"
	taskservice "github.com/sultonabiev/task-management/internal/task/service"
	userrepo "github.com/sultonabiev/task-management/internal/user/repository"
)

// App carries the wired dependency graph for the server binary.
type App struct {
	Log         *logger.Logger
	Config      config.ServerConfig
	Pool        *pgxpool.Pool
	UserRepo    userrepo.Repository
	TaskRepo    taskrepo.Repository
	Credentials *authservice.CredentialService
	Tasks       *taskservice.TaskService
}

func NewApp() (*App, error) {
	log, err := logger.New(os.Getenv("LOG_DIR"), "taskmanager", os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := db.Migrate(log, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	if pool == nil {
		return nil, fmt.Errorf("failed to initialize database pool")
	}

	userRepo := userrepo.NewPgRepository(pool)
	taskRepo := taskrepo.NewPgRepository(pool)

	hasher := &commoncrypto.BcryptHasher{}
	tokens := authservice.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, clock.NewRealClock())
	credentials := authservice.NewCredentialService(userRepo, hasher, tokens, log)
	tasks := taskservice.NewTaskService(taskRepo, log)

	return &App{
		Log:         log,
		Config:      cfg,
		Pool:        pool,
		UserRepo:    userRepo,
		TaskRepo:    taskRepo,
		Credentials: credentials,
		Tasks:       tasks,
	}, nil
}
