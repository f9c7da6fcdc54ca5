package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/mentalist/counseling_backend/internal/controller/handlers"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

type ServerConfig struct {
	JWTSecret   []byte
	ServiceName string
	// RateLimiter guards booking creation; nil disables it.
	RateLimiter *handlers.RateLimiter
}

type Server struct {
	app      *fiber.App
	handlers *handlers.Handlers
	cfg      ServerConfig
	logger   *zap.Logger
}

func NewServer(h *handlers.Handlers, cfg ServerConfig, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		ErrorHandler:          h.ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	return &Server{
		app:      app,
		handlers: h,
		cfg:      cfg,
		logger:   logger,
	}
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// RegisterRoutes mounts middleware and every endpoint.
func (s *Server) RegisterRoutes() {
	h := s.handlers

	s.app.Use(requestid.New())
	s.app.Use(handlers.AccessLog(s.logger))
	s.app.Use(recover.New())
	s.app.Use(handlers.Tracing(s.cfg.ServiceName))

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(handlers.Response{Success: true, Message: "ok"})
	})

	api := s.app.Group("/api", handlers.Authenticate(s.cfg.JWTSecret))

	api.Get("/counselors/available", h.AvailableCounselors)
	api.Get("/counselors/:id/slots", h.AvailableSlots)

	createLimit := func(c *fiber.Ctx) error { return c.Next() }
	if s.cfg.RateLimiter != nil {
		createLimit = s.cfg.RateLimiter.Handler()
	}

	bookings := api.Group("/bookings")
	bookings.Get("/", h.ListBookings)
	bookings.Get("/today", h.TodayBookings)
	bookings.Post("/", handlers.RequireRole(model.RoleUser), createLimit, h.CreateBooking)
	bookings.Get("/:id", h.GetBooking)
	bookings.Post("/:id/cancel", h.CancelBooking)
	bookings.Post("/:id/confirm", h.ConfirmBooking)
	bookings.Post("/:id/reject", h.RejectBooking)
	bookings.Post("/:id/reschedule", h.RescheduleBooking)
	bookings.Post("/:id/complete", h.CompleteBooking)

	chat := api.Group("/chat")
	chat.Get("/conversations", h.Conversations)
	chat.Get("/:bookingId/messages", h.Messages)
	chat.Post("/:bookingId/messages", h.SendMessage)

	mood := api.Group("/mood")
	mood.Post("/", h.RecordMood)
	mood.Get("/week", h.MoodWeek)

	notifications := api.Group("/notifications")
	notifications.Get("/", h.Notifications)
	notifications.Post("/read-all", h.MarkAllNotificationsRead)
	notifications.Post("/:id/read", h.MarkNotificationRead)

	// Role guard per route: a group-level Use on "/counselor" would also
	// match "/counselors".
	counselorOnly := handlers.RequireRole(model.RoleCounselor)
	counselor := api.Group("/counselor")
	counselor.Post("/schedules", counselorOnly, h.SubmitScheduleRequest)
	counselor.Get("/schedules", counselorOnly, h.ScheduleRequests)
	counselor.Post("/schedules/weekly", counselorOnly, h.SubmitWeeklySchedule)
	counselor.Post("/schedules/weekly/window", counselorOnly, h.SubmitWeeklyWindow)
	counselor.Get("/schedules/weekly", counselorOnly, h.WeeklySchedule)
	counselor.Get("/notifications", counselorOnly, h.Notifications)
	counselor.Post("/notifications/:id/read", counselorOnly, h.MarkNotificationRead)

	admin := api.Group("/admin", handlers.RequireRole(model.RoleAdmin))
	admin.Get("/counselors", h.AdminCounselors)
	admin.Post("/counselors/:id/toggle-status", h.ToggleCounselorStatus)
	admin.Get("/users", h.AdminUsers)
	admin.Post("/users/:id/toggle-status", h.ToggleUserStatus)
	admin.Get("/reports/stats", h.ReportStats)
	admin.Get("/notifications", h.Notifications)
	admin.Post("/notifications/:id/read", h.MarkNotificationRead)
	admin.Get("/schedules/pending", h.PendingScheduleRequests)
	admin.Post("/schedules/:id/approve", h.ApproveScheduleRequest)
	admin.Post("/schedules/:id/reject", h.RejectScheduleRequest)
	admin.Get("/schedules/weekly/pending", h.PendingWeeklySchedules)
	admin.Post("/schedules/weekly/:id/approve", h.ApproveWeeklySchedule)
	admin.Post("/schedules/weekly/:id/reject", h.RejectWeeklySchedule)
}

// Start blocks serving addr until the listener closes.
func (s *Server) Start(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
