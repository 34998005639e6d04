package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"uniportal/internal/config"
	"uniportal/internal/database"
	"uniportal/internal/middleware"
	"uniportal/internal/modules/auth"
	jwtsvc "uniportal/internal/pkg/jwt"
	"uniportal/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadAuthRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewRefreshSessionRepository(db)

	j := jwtsvc.New(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	authService := auth.NewService(
		userRepo,
		sessionRepo,
		j,
		logMailer{},
		cfg.BcryptCost,
		cfg.ResetTokenTTL,
	)
	authHandler := auth.NewHandler(authService, cfg)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
		}

		// admin
		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		{
			authHandler.RegisterAdminRoutes(admin)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("listening on :%s (env=%s)", port, cfg.AppEnv)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// logMailer writes reset links to the process log. Wire a real
// delivery backend here when SMTP credentials are provisioned.
type logMailer struct{}

func (logMailer) SendPasswordReset(_ context.Context, email, token string) error {
	log.Printf("password reset requested for %s: token=%s", email, token)
	return nil
}
