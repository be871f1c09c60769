package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/minq3010/ticket-checkin/config"
	"github.com/minq3010/ticket-checkin/internal/consumer"
	"github.com/minq3010/ticket-checkin/internal/handler"
	"github.com/minq3010/ticket-checkin/internal/middleware"
	"github.com/minq3010/ticket-checkin/internal/repository"
	"github.com/minq3010/ticket-checkin/internal/service"
	"github.com/minq3010/ticket-checkin/pkg/database"
	"github.com/minq3010/ticket-checkin/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ consumer: sync events from Event Service
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// RabbitMQ publisher: ticket.entered feed for the statistics dashboards
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ publisher: %v", err)
	}
	defer publisher.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	eventConsumer := consumer.NewEventConsumer(eventRepo)
	eventConsumer.Start(msgs)

	// Service
	ticketSvc := service.NewTicketService(ticketRepo, eventRepo, publisher)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "checkin-service"})
	})

	handler.NewTicketHandler(ticketSvc).RegisterRoutes(e)

	log.Printf("Check-in Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
