package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"user_admin/config"
	"user_admin/internal/auth"
	"user_admin/internal/delivery"
	grpcHandler "user_admin/internal/delivery/grpc"
	"user_admin/internal/domain"
	"user_admin/internal/repository"
	"user_admin/internal/usecase"
	"user_admin/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {

	logger := setupLogger("info")

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("Starting User Admin Service...")

	userRepo, closeStore := openStore(cfg, logger)
	defer closeStore()

	if cfg.HasBootstrapAdmin() {
		if err := ensureAdmin(context.Background(), userRepo, cfg, logger); err != nil {
			logger.Fatalf("Failed to bootstrap admin user: %v", err)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("Failed to configure token manager: %v", err)
	}

	policy := domain.DefaultPolicy()
	if cfg.AddRequiresElevated {
		policy = policy.Merge(domain.Policy{domain.OperationAdd: domain.RequireElevated})
		logger.Info("Adding users is restricted to ADMIN and MANAGER roles")
	}

	userUseCase := usecase.NewUserUseCase(userRepo, policy, logger)
	authUseCase := usecase.NewAuthUseCase(userRepo, tokens, logger)

	router := delivery.NewRouter(
		delivery.NewUserHandler(userUseCase, logger),
		delivery.NewAuthHandler(authUseCase, logger),
		tokens,
		logger,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	logger.Infof("gRPC server listening on %s", cfg.GrpcPort)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcHandler.AuthInterceptor(tokens, logger)))
	grpcHandler.RegisterUserAdminServer(grpcServer, grpcHandler.NewUserHandler(userUseCase, logger))

	reflection.Register(grpcServer)
	logger.Info("gRPC reflection service registered")

	go func() {
		logger.Info("Starting gRPC server...")
		if err := grpcServer.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			logger.Fatalf("Failed to serve gRPC: %v", err)
		}
		logger.Info("gRPC server stopped serving.")
	}()

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
		logger.Info("HTTP server stopped serving.")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("Signal listener started.")

	<-quit
	logger.Warn("Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server forced to shut down: %v", err)
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Attempting graceful shutdown of gRPC server...")
	grpcServer.GracefulStop()
	logger.Info("gRPC server gracefully stopped.")
	logger.Info("User Admin Service shut down gracefully.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

// openStore connects to Postgres when DATABASE_URL is set and falls back to memory otherwise.
func openStore(cfg *config.Config, logger *logrus.Logger) (domain.UserRepository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Warn("Using in-memory user store; data is lost on restart")
		return repository.NewMemoryUserRepository(logger), func() {}
	}

	database, err := connectDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	closeFn := func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}
	return repository.NewPostgresUserRepository(database, logger), closeFn
}

func connectDB(dataSourceName string, logger *logrus.Logger) (*sql.DB, error) {
	logger.Info("Connecting to database...")
	database, err := db.Connect(dataSourceName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	logger.Info("Database connection established and schema is up to date.")
	return database, nil
}

func ensureAdmin(ctx context.Context, repo domain.UserRepository, cfg *config.Config, logger *logrus.Logger) error {
	_, err := repo.GetUserByName(ctx, cfg.AdminUserName)
	if err == nil {
		logger.Infof("Bootstrap admin '%s' already exists", cfg.AdminUserName)
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	_, err = repo.CreateUser(ctx, &domain.User{
		UserName: cfg.AdminUserName,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
		Roles:    []domain.Role{{Name: domain.RoleAdmin}},
	})
	if err != nil {
		return err
	}
	logger.Infof("Bootstrap admin '%s' created", cfg.AdminUserName)
	return nil
}
