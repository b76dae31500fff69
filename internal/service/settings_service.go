package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memorybook/internal/models"
)

const birthdayLayout = "2006-01-02"

type SettingsService struct {
	settings SettingsStore
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context, ownerID string) (models.OwnerSettings, error) {
	settings, err := s.settings.GetSettings(ctx, ownerID)
	if err != nil {
		return models.OwnerSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// Update replaces the child profile. An empty birthday clears it.
func (s *SettingsService) Update(ctx context.Context, ownerID, childName, birthday string) (models.OwnerSettings, error) {
	settings := models.OwnerSettings{
		OwnerID:   ownerID,
		ChildName: strings.TrimSpace(childName),
		UpdatedAt: time.Now().UTC(),
	}

	if raw := strings.TrimSpace(birthday); raw != "" {
		parsed, err := time.Parse(birthdayLayout, raw)
		if err != nil {
			return models.OwnerSettings{}, validationError("childBirthday must be YYYY-MM-DD")
		}
		if parsed.After(settings.UpdatedAt) {
			return models.OwnerSettings{}, validationError("childBirthday is in the future")
		}
		settings.ChildBirthday = &parsed
	}

	if err := s.settings.UpsertSettings(ctx, settings); err != nil {
		return models.OwnerSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}
