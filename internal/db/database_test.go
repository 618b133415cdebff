package db

import (
	"testing"

	"github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		want    string
		wantErr bool
	}{
		{name: "postgres", driver: "postgres", want: "postgres"},
		{name: "mysql", driver: "mysql", want: "mysql"},
		{name: "unknown", driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dialectorFor(&config.DatabaseConfig{Driver: tt.driver, Host: "localhost", Port: "1"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestSetupTestDB_MigratesAllTables(t *testing.T) {
	database, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(database)

	for _, m := range Models() {
		assert.True(t, database.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, database.Migrator().HasColumn(&model.OrderPart{}, "positioning_top2"))
	assert.True(t, database.Migrator().HasColumn(&model.OrderPart{}, "alternative_set_name"))
}

func TestTruncateAllTables(t *testing.T) {
	database, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(database)

	require.NoError(t, database.Create(&model.Order{}).Error)
	require.NoError(t, TruncateAllTables(database))

	var count int64
	database.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
