package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     5432,
		User:     "quill",
		Password: "secret",
		DBName:   "quill",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Equal(t,
		"host=localhost port=5432 user=quill password=secret dbname=quill sslmode=disable",
		dsn)
}

func TestLockForUpdateSkipsSQLite(t *testing.T) {
	// SQLite does not support SELECT ... FOR UPDATE; the helper must not
	// inject the clause there.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	type row struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}
	require.NoError(t, db.AutoMigrate(&row{}))
	require.NoError(t, db.Create(&row{Name: "a"}).Error)

	var got row
	err = db.Transaction(func(tx *gorm.DB) error {
		return LockForUpdate(tx).First(&got, "name = ?", "a").Error
	})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestNewGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(nil)
	silenced := l.LogMode(logger.Silent)
	require.NotNil(t, silenced)
	assert.NotSame(t, l, silenced)
}
