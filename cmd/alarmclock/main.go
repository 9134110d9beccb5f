package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/alarm-clock/internal/application"
	"github.com/example/alarm-clock/internal/config"
	httptransport "github.com/example/alarm-clock/internal/http"
	"github.com/example/alarm-clock/internal/notify"
	"github.com/example/alarm-clock/internal/persistence"
	"github.com/example/alarm-clock/internal/persistence/sqlite"
	"github.com/example/alarm-clock/internal/ringer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	alarmStore := newAlarmStoreAdapter(sqlite.NewAlarmRepository(pool))
	mappingStore := newMappingStoreAdapter(sqlite.NewMappingRepository(pool))

	notifier := notify.NewLocalNotifier(notify.WithLogger(logger))
	defer notifier.Close()
	player := ringer.NewPlayer(logger)

	scheduleService := application.NewScheduleServiceWithLogger(mappingStore, notifier, now, logger)
	alarmService := application.NewAlarmServiceWithLogger(alarmStore, scheduleService, idGenerator, now, logger)
	ringService := application.NewRingServiceWithLogger(alarmStore, scheduleService, player, now, logger)

	// Wake requests do not survive a restart, so every enabled alarm is
	// re-registered against the fresh notifier before serving traffic.
	alarms, err := alarmStore.ListAlarms(ctx)
	if err != nil {
		logger.Error("failed to load alarms for rescheduling", "error", err)
		os.Exit(1)
	}
	if err := scheduleService.RescheduleAll(ctx, alarms); err != nil {
		logger.Error("failed to reschedule alarms", "error", err)
		os.Exit(1)
	}

	go func() {
		for event := range notifier.Events() {
			if _, err := ringService.HandleFired(ctx, event.Payload.AlarmID); err != nil {
				logger.Error("failed to handle fired alarm",
					"alarm_id", event.Payload.AlarmID,
					"external_id", event.ExternalID,
					"error", err,
				)
			}
		}
	}()

	alarmHandler := httptransport.NewAlarmHandler(alarmService, logger)
	ringHandler := httptransport.NewRingHandler(ringService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Alarms:     alarmHandler,
		Ring:       ringHandler,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ringService.Silence(context.Background())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("alarm clock API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// mapPersistenceError translates persistence sentinels into the application
// package's vocabulary so services and handlers only see one error family.
func mapPersistenceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

type alarmStoreAdapter struct {
	repo persistence.AlarmRepository
}

func newAlarmStoreAdapter(repo persistence.AlarmRepository) *alarmStoreAdapter {
	return &alarmStoreAdapter{repo: repo}
}

func (a *alarmStoreAdapter) CreateAlarm(ctx context.Context, alarm application.Alarm) (application.Alarm, error) {
	if err := a.repo.CreateAlarm(ctx, toPersistenceAlarm(alarm)); err != nil {
		return application.Alarm{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetAlarm(ctx, alarm.ID)
	if err != nil {
		return application.Alarm{}, mapPersistenceError(err)
	}
	return toApplicationAlarm(stored), nil
}

func (a *alarmStoreAdapter) GetAlarm(ctx context.Context, id string) (application.Alarm, error) {
	stored, err := a.repo.GetAlarm(ctx, id)
	if err != nil {
		return application.Alarm{}, mapPersistenceError(err)
	}
	return toApplicationAlarm(stored), nil
}

func (a *alarmStoreAdapter) UpdateAlarm(ctx context.Context, alarm application.Alarm) (application.Alarm, error) {
	if err := a.repo.UpdateAlarm(ctx, toPersistenceAlarm(alarm)); err != nil {
		return application.Alarm{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetAlarm(ctx, alarm.ID)
	if err != nil {
		return application.Alarm{}, mapPersistenceError(err)
	}
	return toApplicationAlarm(stored), nil
}

func (a *alarmStoreAdapter) DeleteAlarm(ctx context.Context, id string) error {
	return mapPersistenceError(a.repo.DeleteAlarm(ctx, id))
}

func (a *alarmStoreAdapter) ListAlarms(ctx context.Context) ([]application.Alarm, error) {
	models, err := a.repo.ListAlarms(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	alarms := make([]application.Alarm, 0, len(models))
	for _, model := range models {
		alarms = append(alarms, toApplicationAlarm(model))
	}
	return alarms, nil
}

type mappingStoreAdapter struct {
	repo persistence.MappingRepository
}

func newMappingStoreAdapter(repo persistence.MappingRepository) *mappingStoreAdapter {
	return &mappingStoreAdapter{repo: repo}
}

func (a *mappingStoreAdapter) UpsertMapping(ctx context.Context, mapping application.ScheduleMapping) error {
	return mapPersistenceError(a.repo.UpsertMapping(ctx, persistence.ScheduleMapping{
		AlarmID:     mapping.AlarmID,
		ExternalID:  mapping.ExternalID,
		ScheduledAt: mapping.ScheduledAt,
	}))
}

func (a *mappingStoreAdapter) GetMapping(ctx context.Context, alarmID string) (application.ScheduleMapping, error) {
	stored, err := a.repo.GetMapping(ctx, alarmID)
	if err != nil {
		return application.ScheduleMapping{}, mapPersistenceError(err)
	}
	return application.ScheduleMapping{
		AlarmID:     stored.AlarmID,
		ExternalID:  stored.ExternalID,
		ScheduledAt: stored.ScheduledAt,
	}, nil
}

func (a *mappingStoreAdapter) DeleteMapping(ctx context.Context, alarmID string) error {
	return mapPersistenceError(a.repo.DeleteMapping(ctx, alarmID))
}

func toPersistenceAlarm(alarm application.Alarm) persistence.Alarm {
	var label, ringtone *string
	if alarm.Label != "" {
		value := alarm.Label
		label = &value
	}
	if alarm.RingtoneURI != "" {
		value := alarm.RingtoneURI
		ringtone = &value
	}
	var snooze *int
	if alarm.SnoozeMinutes != nil {
		value := *alarm.SnoozeMinutes
		snooze = &value
	}
	return persistence.Alarm{
		ID:            alarm.ID,
		Label:         label,
		Hour:          alarm.Hour,
		Minute:        alarm.Minute,
		Enabled:       alarm.Enabled,
		RepeatMask:    alarm.RepeatMask,
		RingtoneURI:   ringtone,
		Vibrate:       alarm.Vibrate,
		SnoozeMinutes: snooze,
		PasswordHash:  alarm.PasswordHash,
		PasswordSalt:  alarm.PasswordSalt,
		CreatedAt:     alarm.CreatedAt,
		UpdatedAt:     alarm.UpdatedAt,
	}
}

func toApplicationAlarm(alarm persistence.Alarm) application.Alarm {
	converted := application.Alarm{
		ID:           alarm.ID,
		Hour:         alarm.Hour,
		Minute:       alarm.Minute,
		Enabled:      alarm.Enabled,
		RepeatMask:   alarm.RepeatMask,
		Vibrate:      alarm.Vibrate,
		PasswordHash: alarm.PasswordHash,
		PasswordSalt: alarm.PasswordSalt,
		CreatedAt:    alarm.CreatedAt,
		UpdatedAt:    alarm.UpdatedAt,
	}
	if alarm.Label != nil {
		converted.Label = *alarm.Label
	}
	if alarm.RingtoneURI != nil {
		converted.RingtoneURI = *alarm.RingtoneURI
	}
	if alarm.SnoozeMinutes != nil {
		value := *alarm.SnoozeMinutes
		converted.SnoozeMinutes = &value
	}
	return converted
}
