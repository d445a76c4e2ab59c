package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/pkg/config"
	"gorm.io/gorm/logger"
)

func TestInitDBSqliteAndMigrate(t *testing.T) {
	db, err := InitDB(&config.DBConfig{
		Driver:       "sqlite",
		Path:         "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []interface{}{&model.User{}, &model.Need{}, &model.Service{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasColumn(&model.Need{}, "img_urls"))
	assert.True(t, db.Migrator().HasColumn(&model.Need{}, "create_time"))
	assert.True(t, db.Migrator().HasColumn(&model.User{}, "password_hash"))

	need := model.Need{OwnerID: 1, Title: "t", ServiceType: "repair", ImgURLs: model.StringList{"a.jpg", "b.jpg"}}
	require.NoError(t, db.Create(&need).Error)

	var loaded model.Need
	require.NoError(t, db.First(&loaded, need.ID).Error)
	assert.Equal(t, model.StringList{"a.jpg", "b.jpg"}, loaded.ImgURLs)
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}
