package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditCapacityHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/audit_capacity"
	cancelBookingHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/create_booking"
	createContributionHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/create_contribution"
	getAvailabilityHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/get_booking"
	getLaneBookingsHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/get_lane_bookings"
	seedIntervalsHandler "github.com/m04kA/SMC-CapacityService/internal/api/handlers/seed_intervals"
	"github.com/m04kA/SMC-CapacityService/internal/api/middleware"
	"github.com/m04kA/SMC-CapacityService/internal/config"
	bookingRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/booking"
	capacityRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/capacity"
	contributionRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/contribution"
	intervalRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/interval"
	laneServiceClient "github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	bookingsService "github.com/m04kA/SMC-CapacityService/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-CapacityService/internal/service/schedule"
	allocateBookingUC "github.com/m04kA/SMC-CapacityService/internal/usecase/allocate_booking"
	queryAvailabilityUC "github.com/m04kA/SMC-CapacityService/internal/usecase/query_availability"
	reverseBookingUC "github.com/m04kA/SMC-CapacityService/internal/usecase/reverse_booking"
	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CapacityService/pkg/logger"
	"github.com/m04kA/SMC-CapacityService/pkg/metrics"
	"github.com/m04kA/SMC-CapacityService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-CapacityService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CapacityService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент LaneService (метаданные постов обслуживания)
	laneClient := laneServiceClient.NewClient(
		cfg.LaneService.URL,
		time.Duration(cfg.LaneService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (LaneService=%s timeout=%ds)",
		cfg.LaneService.URL, cfg.LaneService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		intervalRepository     *intervalRepo.Repository
		contributionRepository *contributionRepo.Repository
		capacityRepository     *capacityRepo.Repository
		bookingRepository      *bookingRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		intervalRepository = intervalRepo.NewRepository(wrappedDB)
		contributionRepository = contributionRepo.NewRepository(wrappedDB)
		capacityRepository = capacityRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		intervalRepository = intervalRepo.NewRepository(db)
		contributionRepository = contributionRepo.NewRepository(db)
		capacityRepository = capacityRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		intervalRepository,
		contributionRepository,
		capacityRepository,
		bookingRepository,
		txMgr,
		cfg.Intervals.SliceMinutes,
		log,
	)

	// Инициализируем use cases
	allocateBookingUseCase := allocateBookingUC.NewUseCase(
		intervalRepository,
		contributionRepository,
		capacityRepository,
		bookingRepository,
		laneClient,
		txMgr,
		log,
	)
	reverseBookingUseCase := reverseBookingUC.NewUseCase(
		bookingRepository,
		contributionRepository,
		capacityRepository,
		laneClient,
		txMgr,
		log,
	)
	queryAvailabilityUseCase := queryAvailabilityUC.NewUseCase(
		intervalRepository,
		contributionRepository,
		capacityRepository,
		laneClient,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(queryAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(allocateBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(reverseBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getLaneBookings := getLaneBookingsHandler.NewHandler(bookingSvc, log)
	seedIntervals := seedIntervalsHandler.NewHandler(scheduleSvc, log)
	createContribution := createContributionHandler.NewHandler(scheduleSvc, log)
	auditCapacity := auditCapacityHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Запрос доступной ёмкости по дате
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования с аллокацией ёмкости
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования с реверсом аллокации
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Список бронирований поста
	protected.HandleFunc("/lanes/{laneId}/bookings", getLaneBookings.Handle).Methods(http.MethodGet)

	// --- Администрирование расписания ---
	// Пересидирование интервалов ёмкости
	protected.HandleFunc("/admin/intervals/seed", seedIntervals.Handle).Methods(http.MethodPost)

	// Регистрация вклада работника
	protected.HandleFunc("/admin/contributions", createContribution.Handle).Methods(http.MethodPost)

	// Сверка кэша занятых секунд
	protected.HandleFunc("/admin/lanes/{laneId}/capacity-audit", auditCapacity.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
