package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"staffdir/internal/handlers"
	"staffdir/internal/metrics"
	"staffdir/internal/middleware"
	"staffdir/internal/models"
	"staffdir/internal/repositories"
	"staffdir/internal/services"
	"staffdir/internal/uploads"
	"staffdir/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":5000")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=staffdir port=5432 sslmode=disable")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// --- Database ---
	// The process refuses to start without a reachable database.
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_URL")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Employee{}, &models.Login{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Upload storage ---
	uploadDir := viper.GetString("UPLOAD_DIR")
	uploadStore, err := uploads.NewStore(uploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(registry)

	// --- Message broker (optional) ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	// --- Repositories ---
	employeeRepo := repositories.NewGORMEmployeeRepository(db)
	loginRepo := repositories.NewGORMLoginRepository(db)

	// Credentials are pre-provisioned; the bootstrap only fills an
	// empty store from the environment.
	ensureAdminLogin(loginRepo, viper.GetString("ADMIN_USERNAME"), viper.GetString("ADMIN_PASSWORD"))

	// --- Services ---
	authService := services.NewAuthService(loginRepo, jwtSecret, appMetrics)
	employeeService := services.NewEmployeeService(employeeRepo, uploadStore, publisher, appMetrics)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	// Static read-only serving of uploaded images.
	app.Static(uploads.URLPrefix, uploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// --- API routes ---
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	employeeHandler.RegisterRoutes(protected)

	// --- Event consumer ---
	if mqClient != nil {
		if consumerErr := mqClient.ConsumeEmployeeEvents(func(msg amqp.Delivery) error {
			log.Printf("Employee event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// ensureAdminLogin creates the admin credential record when bootstrap
// credentials are configured and the username does not exist yet.
func ensureAdminLogin(loginRepo repositories.LoginRepository, username, password string) {
	if username == "" || password == "" {
		return
	}
	if _, err := loginRepo.GetByUsername(username); err == nil {
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		log.Printf("Warning: could not check admin login: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	if err := loginRepo.Create(&models.Login{Username: username, Password: string(hash)}); err != nil {
		log.Fatalf("Failed to create admin login: %v", err)
	}
	log.Printf("Provisioned admin login %q", username)
}
