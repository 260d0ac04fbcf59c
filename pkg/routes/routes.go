package pkg

import (
	"context"
	"log"
	"net/http"

	"ExamHallPlanner/internal/auth"
	"ExamHallPlanner/internal/config"
	"ExamHallPlanner/internal/outbox"
	"ExamHallPlanner/internal/seating"
	"ExamHallPlanner/pkg/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewResendConfig),
	fx.Provide(config.NewEmailService),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(auth.NewAuthService),
	fx.Provide(auth.NewUserService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(seating.NewSeatingRepository),
	fx.Provide(seating.NewSeatingService),
	fx.Provide(seating.NewSeatingHandler),
	fx.Provide(outbox.NewOutboxRepository),
	fx.Provide(outbox.NewOutboxService),
	fx.Provide(outbox.NewOutboxScheduler),
	fx.Provide(outbox.NewOutboxHandler),
	fx.Invoke(config.EnsureIndexes),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(StartOutboxScheduler))

// RequestValidator adapts go-playground/validator to echo's Validator
// interface.
type RequestValidator struct {
	validate *validator.Validate
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewEchoServer(lc fx.Lifecycle) *echo.Echo {
	e := echo.New()
	e.Validator = &RequestValidator{validate: validator.New()}
	middleware.SetupMiddleware(e)
	port := ":8080"
	log.Println("Server running on http://localhost" + port[1:])
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(port); err != nil && err != http.ErrServerClosed {
					log.Fatal("Failed to start the server:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func StartOutboxScheduler(scheduler *outbox.OutboxScheduler, lc fx.Lifecycle) {
	scheduler.Start(lc)
}

func RegisterRoutes(e *echo.Echo, authHandler *auth.AuthHandler, seatingHandler *seating.SeatingHandler, outboxHandler *outbox.OutboxHandler) {
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/verify-email", authHandler.VerifyEmail)
	e.POST("/forgot-password", authHandler.ForgotPassword)
	e.POST("/reset-password", authHandler.ResetPassword)

	protected := e.Group("/api")
	protected.Use(middleware.JWTMiddleware)
	protected.Use(middleware.CasbinMiddleware)

	protected.GET("/profile", authHandler.Profile)
	protected.GET("/faculty", authHandler.ListFaculty)

	protected.POST("/sessions", seatingHandler.CreateSession)
	protected.GET("/sessions/:id", seatingHandler.GetSession)
	protected.POST("/sessions/:id/rooms", seatingHandler.SelectRooms)
	protected.POST("/sessions/:id/students", seatingHandler.SelectStudents)
	protected.POST("/sessions/:id/generate", seatingHandler.GeneratePlans)
	protected.GET("/sessions/:id/invigilators", seatingHandler.GetInvigilators)
	protected.POST("/sessions/:id/invigilators", seatingHandler.AssignInvigilators)

	protected.GET("/rooms", seatingHandler.ListRooms)
	protected.POST("/rooms", seatingHandler.CreateRoom)
	protected.PUT("/rooms/:id", seatingHandler.UpdateRoom)
	protected.DELETE("/rooms/:id", seatingHandler.DeleteRoom)

	protected.GET("/students", seatingHandler.ListStudents)
	protected.POST("/students", seatingHandler.CreateStudent)

	protected.GET("/plans", seatingHandler.ListPlans)
	protected.GET("/plans/:planId", seatingHandler.GetPlan)
	protected.GET("/plans/:planId/stats", seatingHandler.GetPlanStats)
	protected.DELETE("/plans/:planId", seatingHandler.DeletePlan)
	protected.POST("/plans/:planId/outbox", outboxHandler.QueuePlanEmails)
	protected.GET("/plans/:planId/outbox", outboxHandler.ListPlanEmails)
}
