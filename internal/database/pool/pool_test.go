package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func createTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestForDriver(t *testing.T) {
	assert.Equal(t, SQLitePoolConfig(), ForDriver("sqlite"))
	assert.Equal(t, DefaultPoolConfig(), ForDriver("postgres"))
	assert.Equal(t, DefaultPoolConfig(), ForDriver(""))

	sqliteCfg := SQLitePoolConfig()
	assert.Equal(t, 1, sqliteCfg.MaxOpenConns)
	assert.Zero(t, sqliteCfg.ConnMaxLifetime)
}

func TestSetupConnectionPool(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Minute},
		},
		{
			name: "idle equals open",
			cfg:  Config{MaxOpenConns: 3, MaxIdleConns: 3},
		},
		{
			name: "zero idle",
			cfg:  Config{MaxOpenConns: 3},
		},
		{
			name:    "zero open",
			cfg:     Config{MaxIdleConns: 1},
			wantErr: "MaxOpenConns must be greater than 0",
		},
		{
			name:    "negative idle",
			cfg:     Config{MaxOpenConns: 3, MaxIdleConns: -1},
			wantErr: "MaxIdleConns must be non-negative",
		},
		{
			name:    "idle above open",
			cfg:     Config{MaxOpenConns: 2, MaxIdleConns: 4},
			wantErr: "MaxIdleConns (4) cannot be greater than MaxOpenConns (2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := createTestDB(t)

			err := SetupConnectionPool(db, tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			sqlDB, err := db.DB()
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.MaxOpenConns, sqlDB.Stats().MaxOpenConnections)
		})
	}
}
