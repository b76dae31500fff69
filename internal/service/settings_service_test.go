package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybook/internal/service"
	"memorybook/internal/service/servicetest"
)

func TestSettingsUpdate(t *testing.T) {
	ctx := context.Background()
	db := servicetest.NewDB()
	settings := service.NewSettingsService(db.Settings())

	empty, err := settings.Get(ctx, owner)
	require.NoError(t, err)
	assert.Nil(t, empty.ChildBirthday)

	saved, err := settings.Update(ctx, owner, "  Mia ", "2023-05-17")
	require.NoError(t, err)
	assert.Equal(t, "Mia", saved.ChildName)
	require.NotNil(t, saved.ChildBirthday)
	assert.Equal(t, time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC), *saved.ChildBirthday)

	loaded, err := settings.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, saved.ChildBirthday, loaded.ChildBirthday)

	cleared, err := settings.Update(ctx, owner, "Mia", "")
	require.NoError(t, err)
	assert.Nil(t, cleared.ChildBirthday)
}

func TestSettingsUpdateRejectsBadBirthday(t *testing.T) {
	settings := service.NewSettingsService(servicetest.NewDB().Settings())

	for _, raw := range []string{"17/05/2023", "2023-13-01", time.Now().AddDate(1, 0, 0).Format("2006-01-02")} {
		_, err := settings.Update(context.Background(), owner, "Mia", raw)
		assert.ErrorIs(t, err, service.ErrValidation, raw)
	}
}
