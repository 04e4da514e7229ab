package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

// ErrInvalidConfig возвращается, когда значения конфигурации недопустимы
var ErrInvalidConfig = errors.New("config: invalid config")

// Config корневая конфигурация сервиса
type Config struct {
	Timezone      string              `toml:"timezone"`
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	CRM           CRMConfig           `toml:"crm"`
	Appointments  AppointmentsConfig  `toml:"appointments"`
	Notifications NotificationsConfig `toml:"notifications"`
	WebForm       WebFormConfig       `toml:"web_form"`
	Scheduler     SchedulerConfig     `toml:"scheduler"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// CRMConfig бизнес-настройки лидов и сделок
type CRMConfig struct {
	OpportunityContactNoMandatory bool   `toml:"opportunity_contact_no_mandatory"`
	AutoMarkOpportunityAsLost     bool   `toml:"auto_mark_opportunity_as_lost"`
	MarkOpportunityLostAfterDays  int    `toml:"mark_opportunity_lost_after_days"`
	OpportunityAutoLostReason     string `toml:"opportunity_auto_lost_reason"`
	DefaultLeadSource             string `toml:"default_lead_source"`
}

// AppointmentsConfig настройки записи на встречи и напоминаний
type AppointmentsConfig struct {
	AutoMarkMissedDays        int    `toml:"auto_mark_missed_days"`
	ReminderDaysBefore        int    `toml:"reminder_days_before"`
	ReminderConfirmationHours int    `toml:"reminder_confirmation_hours"`
	ReminderTime              string `toml:"reminder_time"`
}

type NotificationsConfig struct {
	AutomatedSMSEnabled bool     `toml:"automated_sms_enabled"`
	AutomatedTemplates  []string `toml:"automated_templates"`
}

// WebFormConfig настройки формы обратной связи на сайте
type WebFormConfig struct {
	RateLimit         int               `toml:"rate_limit"`
	RateWindowSeconds int               `toml:"rate_window_seconds"`
	QueryOptions      map[string]string `toml:"query_options"`
}

type SchedulerConfig struct {
	Enabled     bool `toml:"enabled"`
	TickSeconds int  `toml:"tick_seconds"`
}

// Load читает конфигурацию из toml файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "smc-crm"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Appointments.ReminderTime == "" {
		c.Appointments.ReminderTime = "00:00"
	}
	if c.WebForm.RateLimit == 0 {
		c.WebForm.RateLimit = 10
	}
	if c.WebForm.RateWindowSeconds == 0 {
		c.WebForm.RateWindowSeconds = 60 * 60
	}
	if c.Scheduler.TickSeconds == 0 {
		c.Scheduler.TickSeconds = 60
	}
}

// Validate проверяет значения, которые нельзя исправить значением по умолчанию
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.CRM.MarkOpportunityLostAfterDays < 0 {
		return fmt.Errorf("%w: crm.mark_opportunity_lost_after_days must not be negative", ErrInvalidConfig)
	}
	if c.Appointments.AutoMarkMissedDays < 0 {
		return fmt.Errorf("%w: appointments.auto_mark_missed_days must not be negative", ErrInvalidConfig)
	}
	if _, err := types.NewTimeStringFromString(c.Appointments.ReminderTime); err != nil {
		return fmt.Errorf("%w: appointments.reminder_time: %v", ErrInvalidConfig, err)
	}
	if c.WebForm.RateLimit < 0 || c.WebForm.RateWindowSeconds < 0 {
		return fmt.Errorf("%w: web_form limits must not be negative", ErrInvalidConfig)
	}
	if c.Scheduler.TickSeconds < 1 {
		return fmt.Errorf("%w: scheduler.tick_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}

// Location часовой пояс, в котором считаются даты встреч и напоминаний
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CRMSettings настройки лидов и сделок в виде доменной структуры
func (c *Config) CRMSettings() domain.CRMSettings {
	return domain.CRMSettings{
		OpportunityContactNoMandatory: c.CRM.OpportunityContactNoMandatory,
		AutoMarkOpportunityAsLost:     c.CRM.AutoMarkOpportunityAsLost,
		MarkOpportunityLostAfterDays:  c.CRM.MarkOpportunityLostAfterDays,
		OpportunityAutoLostReason:     c.CRM.OpportunityAutoLostReason,
		DefaultLeadSource:             c.CRM.DefaultLeadSource,
	}
}

// AppointmentSettings настройки записи на встречи
func (c *Config) AppointmentSettings() domain.AppointmentSettings {
	reminderTime, err := types.NewTimeStringFromString(c.Appointments.ReminderTime)
	if err != nil {
		reminderTime = types.MustTimeString("00:00")
	}
	return domain.AppointmentSettings{
		AutoMarkMissedDays:        c.Appointments.AutoMarkMissedDays,
		ReminderDaysBefore:        c.Appointments.ReminderDaysBefore,
		ReminderConfirmationHours: c.Appointments.ReminderConfirmationHours,
		ReminderTime:              reminderTime,
	}
}

// NotificationSettings настройки автоматических SMS
func (c *Config) NotificationSettings() domain.NotificationSettings {
	return domain.NotificationSettings{
		AutomatedSMSEnabled: c.Notifications.AutomatedSMSEnabled,
		AutomatedTemplates:  c.Notifications.AutomatedTemplates,
	}
}
