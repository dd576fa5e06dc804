package main

import (
	bookinghandler "staydesk/internal/bookings/handler"
	bookingservice "staydesk/internal/bookings/service"
	bookingvalidator "staydesk/internal/bookings/validator"
	"staydesk/internal/events"
	roomhandler "staydesk/internal/rooms/handler"
	roomservice "staydesk/internal/rooms/service"
	roomvalidator "staydesk/internal/rooms/validator"
	"staydesk/internal/storage"
	"staydesk/internal/storage/factory"
	"staydesk/pkg/app"
	"staydesk/pkg/config"
	"staydesk/pkg/kafka"
	kafka_config "staydesk/pkg/kafka/config"
	kafka_middleware "staydesk/pkg/kafka/middleware"
	"staydesk/pkg/locker"
)

const ServiceName = "hotel"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Hotel service")
	store, err := factory.NewStore(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize storage", "error", err)
	}
	cfg.SetRedis()
	publisher := initPublisher(cfg)

	rooms, bookings := initServices(cfg, store, publisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(store, publisher,
		roomhandler.NewRoomHandler(rooms, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Domain events disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.KafkaEventsTopic, cfg.KafkaDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Publishing domain events", "topic", cfg.KafkaEventsTopic, "dlq_topic", cfg.KafkaDLQTopic)
	return events.NewKafkaPublisher(producer, ServiceName)
}

// initServices wires both services to one keyed lock so that booking
// creation and room deletion on the same room are serialized.
func initServices(cfg *config.Config, store storage.Store, publisher events.Publisher) (roomservice.RoomService, bookingservice.BookingService) {
	locks := locker.NewKeyed[int64]()

	rooms := roomservice.NewRoomService(
		store,
		locks,
		roomvalidator.NewRoomValidator(cfg.Log),
		publisher,
		cfg,
	)
	bookings := bookingservice.NewBookingService(
		store,
		locks,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Hotel services initialized", "storage_driver", cfg.StorageDriver)
	return rooms, bookings
}
