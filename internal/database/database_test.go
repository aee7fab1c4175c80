package database_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/database/dbtest"
	"storefront/internal/models"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open(&config.Config{DatabaseDriver: "mysql"})
	assert.Error(t, err)
}

func TestOpen_TranslatesDuplicateKey(t *testing.T) {
	db := dbtest.Open(t)

	user := "user-1"
	require.NoError(t, db.Create(&models.Cart{UserID: &user}).Error)

	err := db.Create(&models.Cart{UserID: &user}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestOpen_IsolatedTestDatabases(t *testing.T) {
	a := dbtest.Open(t)
	b := dbtest.Open(t)

	require.NoError(t, a.Create(&models.Category{Name: "Shoes", Slug: "shoes"}).Error)

	var count int64
	require.NoError(t, b.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestNewLogger_IgnoresRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	db := dbtest.Open(t).Session(&gorm.Session{Logger: database.NewLogger(&buf)})

	var cart models.Cart
	err := db.First(&cart, "id = ?", "missing").Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound), "got %v", err)
	assert.Empty(t, buf.String())

	var n int
	require.Error(t, db.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error)
	assert.Contains(t, buf.String(), "no_such_table")
}
