package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-CRM/internal/config"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/infra/kv"
	appointmentRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointment"
	appointmentTypeRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointmenttype"
	communicationRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/communication"
	eventRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/event"
	feedbackRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/feedback"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	mastersRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/masters"
	notificationRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/notification"
	opportunityRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/opportunity"
	salesPersonRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/salesperson"
	territoryRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/territory"
	"github.com/m04kA/SMC-CRM/internal/jobs"
	appointmentsService "github.com/m04kA/SMC-CRM/internal/service/appointments"
	appointmentTypesService "github.com/m04kA/SMC-CRM/internal/service/appointmenttypes"
	feedbackService "github.com/m04kA/SMC-CRM/internal/service/feedback"
	leadsService "github.com/m04kA/SMC-CRM/internal/service/leads"
	notificationsService "github.com/m04kA/SMC-CRM/internal/service/notifications"
	opportunitiesService "github.com/m04kA/SMC-CRM/internal/service/opportunities"
	salesPersonsService "github.com/m04kA/SMC-CRM/internal/service/salespersons"
	statusSyncService "github.com/m04kA/SMC-CRM/internal/service/statussync"
	territoriesService "github.com/m04kA/SMC-CRM/internal/service/territories"
	bookAppointmentUC "github.com/m04kA/SMC-CRM/internal/usecase/book_appointment"
	getAppointmentTimeslotsUC "github.com/m04kA/SMC-CRM/internal/usecase/get_appointment_timeslots"
	leadFormUC "github.com/m04kA/SMC-CRM/internal/usecase/make_opportunity_from_lead_form"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/logger"
	"github.com/m04kA/SMC-CRM/pkg/metrics"
	"github.com/m04kA/SMC-CRM/pkg/ratelimit"
	"github.com/m04kA/SMC-CRM/pkg/txmanager"
)

const (
	kvPrefix        = "crm:"
	rateLimitPrefix = "crm:web_form:"
)

// app общие зависимости всех команд
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	metrics      *metrics.Metrics
	sqlDB        *sql.DB
	db           *dbmetrics.DB
	txManager    *txmanager.TransactionManager
	timeProvider domain.TimeProvider

	redis         *redis.Client
	stopMetricsCh chan struct{}
}

// repositories репозитории поверх общего подключения
type repositories struct {
	appointments     *appointmentRepo.Repository
	appointmentTypes *appointmentTypeRepo.Repository
	communications   *communicationRepo.Repository
	events           *eventRepo.Repository
	feedback         *feedbackRepo.Repository
	leads            *leadRepo.Repository
	masters          *mastersRepo.Repository
	notifications    *notificationRepo.Repository
	opportunities    *opportunityRepo.Repository
	salesPersons     *salesPersonRepo.Repository
	territories      *territoryRepo.Repository
}

// services сервисы, сценарии и планировщик
type services struct {
	leads            *leadsService.Service
	statusSync       *statusSyncService.Service
	notifications    *notificationsService.Service
	opportunities    *opportunitiesService.Service
	appointments     *appointmentsService.Service
	appointmentTypes *appointmentTypesService.Service
	salesPersons     *salesPersonsService.Service
	territories      *territoriesService.Service
	feedback         *feedbackService.Service

	bookAppointment *bookAppointmentUC.UseCase
	timeslots       *getAppointmentTimeslotsUC.UseCase
	leadForm        *leadFormUC.UseCase

	scheduler *jobs.Scheduler
}

// newApp загружает конфигурацию, поднимает логгер и подключение к базе
func newApp(ctx context.Context, path string) (*app, error) {
	// Загружаем конфигурацию
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Info("Configuration loaded from %s", path)

	a := &app{
		cfg:           cfg,
		log:           log,
		timeProvider:  &domain.RealTimeProvider{Location: cfg.Location()},
		stopMetricsCh: make(chan struct{}),
	}

	// Инициализируем метрики (если включены)
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.sqlDB = db

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if a.metrics != nil {
		a.db = dbmetrics.WrapWithDefault(db, a.metrics, a.stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		a.db = dbmetrics.Wrap(db, nil)
	}
	a.txManager = txmanager.NewTransactionManager(a.db)

	return a, nil
}

// connectRedis подключает redis (нужен для напоминаний и лимита формы)
func (a *app) connectRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping redis %s: %w", a.cfg.Redis.Addr, err)
	}
	a.redis = client
	a.log.Info("Successfully connected to redis (addr=%s, db=%d)", a.cfg.Redis.Addr, a.cfg.Redis.DB)
	return nil
}

// Close освобождает подключения
func (a *app) Close() {
	close(a.stopMetricsCh)
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close redis: %v", err)
		}
	}
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			a.log.Warn("Failed to close database: %v", err)
		}
	}
	_ = a.log.Close()
}

func (a *app) buildRepositories() *repositories {
	return &repositories{
		appointments:     appointmentRepo.NewRepository(a.db),
		appointmentTypes: appointmentTypeRepo.NewRepository(a.db),
		communications:   communicationRepo.NewRepository(a.db),
		events:           eventRepo.NewRepository(a.db),
		feedback:         feedbackRepo.NewRepository(a.db),
		leads:            leadRepo.NewRepository(a.db),
		masters:          mastersRepo.NewRepository(a.db),
		notifications:    notificationRepo.NewRepository(a.db),
		opportunities:    opportunityRepo.NewRepository(a.db),
		salesPersons:     salesPersonRepo.NewRepository(a.db),
		territories:      territoryRepo.NewRepository(a.db),
	}
}

// buildServices собирает сервисы, требует подключенный redis
func (a *app) buildServices(repos *repositories) (*services, error) {
	if a.redis == nil {
		return nil, fmt.Errorf("redis is not connected")
	}

	limiter, err := ratelimit.New(a.redis, ratelimit.Config{
		Limit:  a.cfg.WebForm.RateLimit,
		Window: time.Duration(a.cfg.WebForm.RateWindowSeconds) * time.Second,
		Prefix: rateLimitPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	store := kv.New(a.redis, kvPrefix)
	tp := a.timeProvider

	s := &services{}
	s.statusSync = statusSyncService.NewService(
		repos.leads,
		repos.opportunities,
		repos.appointments,
		repos.communications,
		tp,
		a.log,
	)
	s.leads = leadsService.NewService(repos.leads, s.statusSync, tp, a.log)
	s.notifications = notificationsService.NewService(
		repos.notifications,
		a.cfg.NotificationSettings(),
		a.metrics,
		tp,
		a.log,
	)
	s.timeslots = getAppointmentTimeslotsUC.NewUseCase(repos.appointments, repos.appointmentTypes, a.log)
	s.appointments = appointmentsService.NewService(
		repos.appointments,
		repos.appointmentTypes,
		repos.leads,
		repos.masters,
		repos.salesPersons,
		repos.events,
		s.statusSync,
		s.notifications,
		s.timeslots,
		store,
		a.txManager,
		a.cfg.AppointmentSettings(),
		tp,
		a.log,
	)
	s.opportunities = opportunitiesService.NewService(
		repos.opportunities,
		repos.leads,
		repos.salesPersons,
		repos.masters,
		repos.communications,
		s.statusSync,
		s.notifications,
		s.appointments,
		a.txManager,
		a.cfg.CRMSettings(),
		tp,
		a.log,
	)
	s.appointmentTypes = appointmentTypesService.NewService(repos.appointmentTypes, repos.salesPersons, a.txManager, a.log)
	s.salesPersons = salesPersonsService.NewService(repos.salesPersons, repos.opportunities, a.txManager, tp, a.log)
	s.territories = territoriesService.NewService(repos.territories, a.txManager, a.log)
	s.feedback = feedbackService.NewService(
		repos.feedback,
		repos.communications,
		repos.leads,
		repos.opportunities,
		repos.appointments,
		a.txManager,
		tp,
		a.log,
	)

	s.bookAppointment = bookAppointmentUC.NewUseCase(s.leads, s.appointments, a.txManager, tp, a.log)
	s.leadForm = leadFormUC.NewUseCase(
		limiter,
		repos.leads,
		s.leads,
		s.opportunities,
		repos.communications,
		a.txManager,
		tp,
		leadFormUC.Settings{
			DefaultLeadSource: a.cfg.CRM.DefaultLeadSource,
			QueryOptions:      a.cfg.WebForm.QueryOptions,
		},
		a.log,
	)

	s.scheduler = jobs.NewScheduler(
		jobs.Default(s.appointments, s.opportunities),
		time.Duration(a.cfg.Scheduler.TickSeconds)*time.Second,
		tp,
		a.metrics,
		a.log,
	)

	return s, nil
}
