package api

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryHandler_Create_InvalidName(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler().Create)

	// 含非法字符，数据库不应被触达
	body := `{"name":"餐饮!@#"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_Duplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expense_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/categories", NewCategoryHandler().Create)

	body := `{"name":"business"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_SetBudget_Negative(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/categories/:id/budget", NewCategoryHandler().SetBudget)

	body := `{"budget_amount":-100}`
	req := httptest.NewRequest("PUT", "/categories/1/budget", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// gte=0 绑定校验直接挡下
	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Delete_Default(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expense_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "is_default"}).
			AddRow(1, 1, "Business", true))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/categories/:id", NewCategoryHandler().Delete)

	req := httptest.NewRequest("DELETE", "/categories/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
