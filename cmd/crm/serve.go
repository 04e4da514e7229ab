package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appointmentTypesHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/appointment_types"
	appointmentsHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/appointments"
	bookAppointmentHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/book_appointment"
	customerFeedbackHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/customer_feedback"
	getAppointmentTimeslotsHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/get_appointment_timeslots"
	jobsHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/jobs"
	leadsHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/leads"
	leadFormHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/make_opportunity_from_lead_form"
	notificationsHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/notifications"
	opportunitiesHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/opportunities"
	salesPersonsHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/sales_persons"
	territoriesHandler "github.com/m04kA/SMC-CRM/internal/api/handlers/territories"
	"github.com/m04kA/SMC-CRM/internal/api/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API и планировщик задач",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("Starting SMC-CRM...")

	if err := a.connectRedis(ctx); err != nil {
		return err
	}

	repos := a.buildRepositories()
	svc, err := a.buildServices(repos)
	if err != nil {
		return err
	}
	a.log.Info("Services initialized")

	router := newRouter(a, svc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// HTTP сервер
	g.Go(func() error {
		a.log.Info("Server listening on port %d", a.cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Планировщик задач
	if a.cfg.Scheduler.Enabled {
		g.Go(func() error {
			return svc.scheduler.Start(gCtx)
		})
	} else {
		a.log.Info("Scheduler disabled")
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		a.log.Info("Server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.log.Error("Server error: %v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// newRouter собирает маршруты API
func newRouter(a *app, svc *services) *mux.Router {
	loc := a.cfg.Location()

	// Инициализируем handlers
	leadsH := leadsHandler.NewHandler(svc.leads, a.log)
	opportunitiesH := opportunitiesHandler.NewHandler(svc.opportunities, loc, a.log)
	appointmentsH := appointmentsHandler.NewHandler(svc.appointments, loc, a.log)
	appointmentTypesH := appointmentTypesHandler.NewHandler(svc.appointmentTypes, a.log)
	salesPersonsH := salesPersonsHandler.NewHandler(svc.salesPersons, a.log)
	territoriesH := territoriesHandler.NewHandler(svc.territories, a.log)
	feedbackH := customerFeedbackHandler.NewHandler(svc.feedback, a.log)
	notificationsH := notificationsHandler.NewHandler(svc.notifications, a.log)
	jobsH := jobsHandler.NewHandler(svc.scheduler, a.log)
	bookAppointmentH := bookAppointmentHandler.NewHandler(svc.bookAppointment, loc, a.log)
	timeslotsH := getAppointmentTimeslotsHandler.NewHandler(svc.timeslots, loc, a.log)
	leadFormH := leadFormHandler.NewHandler(svc.leadForm, a.log)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(a.log))
	r.Use(middleware.Logging(a.log))

	if a.metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(a.cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Публичные маршруты
	api.HandleFunc("/web-form/lead", leadFormH.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointment-types/{name}/timeslots", timeslotsH.Handle).Methods(http.MethodGet)

	// Маршруты с авторизацией
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Лиды
	protected.HandleFunc("/leads", leadsH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/leads", leadsH.Search).Methods(http.MethodGet)
	protected.HandleFunc("/leads/from-communication", leadsH.FromCommunication).Methods(http.MethodPost)
	protected.HandleFunc("/leads/by-phone", leadsH.FindByPhone).Methods(http.MethodGet)
	protected.HandleFunc("/leads/{name}", leadsH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/leads/{name}", leadsH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/leads/{name}", leadsH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/leads/{name}/make-opportunity", leadsH.MakeOpportunity).Methods(http.MethodGet)
	protected.HandleFunc("/leads/{name}/contact-details", leadsH.ContactDetails).Methods(http.MethodGet)
	protected.HandleFunc("/leads/{name}/address-details", leadsH.AddressDetails).Methods(http.MethodGet)

	// Возможности
	protected.HandleFunc("/opportunities", opportunitiesH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/opportunities/status", opportunitiesH.SetMultipleStatus).Methods(http.MethodPost)
	protected.HandleFunc("/opportunities/customer-details", opportunitiesH.CustomerDetails).Methods(http.MethodGet)
	protected.HandleFunc("/opportunities/follow-up-events", opportunitiesH.FollowUpEvents).Methods(http.MethodGet)
	protected.HandleFunc("/opportunities/{name}", opportunitiesH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/opportunities/{name}", opportunitiesH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/opportunities/{name}", opportunitiesH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/opportunities/{name}/lost", opportunitiesH.SetLost).Methods(http.MethodPost)
	protected.HandleFunc("/opportunities/{name}/follow-ups", opportunitiesH.ScheduleFollowUp).Methods(http.MethodPost)
	protected.HandleFunc("/opportunities/{name}/communications", opportunitiesH.SubmitCommunication).Methods(http.MethodPost)
	protected.HandleFunc("/opportunities/{name}/communications/action", opportunitiesH.SubmitCommunicationWithAction).Methods(http.MethodPost)
	protected.HandleFunc("/opportunities/{name}/make-appointment", opportunitiesH.MakeAppointment).Methods(http.MethodGet)

	// Встречи
	protected.HandleFunc("/appointments", appointmentsH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/book", bookAppointmentH.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/events", appointmentsH.Events).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/sales-persons", appointmentsH.SalesPersons).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{name}", appointmentsH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{name}", appointmentsH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{name}", appointmentsH.UpdateAfterSubmit).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{name}", appointmentsH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/appointments/{name}/submit", appointmentsH.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{name}/cancel", appointmentsH.Cancel).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{name}/status", appointmentsH.UpdateStatus).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{name}/reschedule", appointmentsH.Reschedule).Methods(http.MethodGet)

	// Типы встреч
	protected.HandleFunc("/appointment-types", appointmentTypesH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/appointment-types", appointmentTypesH.List).Methods(http.MethodGet)
	protected.HandleFunc("/appointment-types/{name}", appointmentTypesH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/appointment-types/{name}", appointmentTypesH.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/appointment-types/{name}", appointmentTypesH.Delete).Methods(http.MethodDelete)

	// Продавцы
	protected.HandleFunc("/sales-persons", salesPersonsH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/sales-persons", salesPersonsH.List).Methods(http.MethodGet)
	protected.HandleFunc("/sales-persons/me", salesPersonsH.Me).Methods(http.MethodGet)
	protected.HandleFunc("/sales-persons/{name}", salesPersonsH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/sales-persons/{name}", salesPersonsH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/sales-persons/{name}", salesPersonsH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/sales-persons/{name}/subtree", salesPersonsH.Subtree).Methods(http.MethodGet)
	protected.HandleFunc("/sales-persons/{name}/timeline", salesPersonsH.Timeline).Methods(http.MethodGet)

	// Территории
	protected.HandleFunc("/territories", territoriesH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/territories", territoriesH.List).Methods(http.MethodGet)
	protected.HandleFunc("/territories/{name}", territoriesH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/territories/{name}", territoriesH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/territories/{name}", territoriesH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/territories/{name}/subtree", territoriesH.Subtree).Methods(http.MethodGet)

	// Отзывы клиентов
	protected.HandleFunc("/customer-feedback", feedbackH.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/customer-feedback", feedbackH.GetByReference).Methods(http.MethodGet)
	protected.HandleFunc("/customer-feedback/{name}", feedbackH.Get).Methods(http.MethodGet)

	// Уведомления
	protected.HandleFunc("/notifications", notificationsH.Enqueue).Methods(http.MethodPost)
	protected.HandleFunc("/notifications", notificationsH.ListByReference).Methods(http.MethodGet)
	protected.HandleFunc("/notifications", notificationsH.Cancel).Methods(http.MethodDelete)
	protected.HandleFunc("/notifications/counts", notificationsH.Counts).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/queued", notificationsH.ListQueued).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}/sent", notificationsH.MarkSent).Methods(http.MethodPost)
	protected.HandleFunc("/notifications/{id}/failed", notificationsH.MarkFailed).Methods(http.MethodPost)

	// Фоновые задачи
	protected.HandleFunc("/jobs", jobsH.List).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{name}/run", jobsH.Run).Methods(http.MethodPost)

	return r
}
