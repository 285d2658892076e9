package api

import (
	"testing"
	"time"

	"lifebook/config"
	"lifebook/database"
	"lifebook/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.InitJWT(testConfig())
}

// testConfig 测试用配置
func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			ExpireTime: time.Hour,
		},
		Encryption: config.EncryptionConfig{
			Key: "test-encryption-key",
		},
	}
}

// setupMockDB 把全局 DB 换成 sqlmock，返回 mock 和恢复函数
func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

// setUserIDMiddleware 注入登录态
func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("username", "testuser")
		c.Next()
	}
}
