package services

import (
	"context"
	"fmt"

	"tripdesk/internal/amqp"
	"tripdesk/internal/core"
	applog "tripdesk/internal/log"
	"tripdesk/internal/ports"
)

// SettingsService reads and saves the branding singleton.
type SettingsService struct {
	store ports.SettingsStore
	notifier
	logger *applog.Logger
}

func NewSettingsService(store ports.SettingsStore, publisher Publisher, logger *applog.Logger) *SettingsService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSettings)
	return &SettingsService{
		store:    store,
		notifier: notifier{publisher: publisher, logger: logger},
		logger:   logger,
	}
}

func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings core.Settings) (core.Settings, error) {
	if err := settings.Validate(); err != nil {
		return core.Settings{}, err
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	s.logger.InfoContext(ctx, "Settings saved", applog.FieldOperation, applog.OpUpdate)
	s.notify(ctx, ports.CollectionSettings, "", amqp.OpUpsert)
	return settings, nil
}
