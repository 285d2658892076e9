package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodHandler_Create_InvalidMealType(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/food", NewFoodHandler().Create)

	body := `{"name":"沙拉","meal_type":"夜宵","date":"2026-03-15"}`
	req := httptest.NewRequest("POST", "/food", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodHandler_Create_FutureDate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/food", NewFoodHandler().Create)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	body := `{"name":"沙拉","meal_type":"午餐","date":"` + tomorrow + `"}`
	req := httptest.NewRequest("POST", "/food", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "不能晚于今天")
	// 日期校验在任何 SQL 之前
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodHandler_Update_FutureDate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	today := time.Now()
	mock.ExpectQuery("SELECT .* FROM `food_entries`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "meal_type", "date", "calories"}).
			AddRow(5, 1, "燕麦粥", "早餐", today, 280))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/food/:id", NewFoodHandler().Update)

	tomorrow := today.AddDate(0, 0, 1).Format("2006-01-02")
	body := `{"name":"燕麦粥","meal_type":"早餐","date":"` + tomorrow + `"}`
	req := httptest.NewRequest("PUT", "/food/5", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodHandler_List_MealTypeFilter(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	today := time.Now()
	mock.ExpectQuery("SELECT .* FROM `food_entries`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "meal_type", "date", "calories"}).
			AddRow(3, 1, "鸡胸肉沙拉", "午餐", today, 350))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/food", NewFoodHandler().List)

	req := httptest.NewRequest("GET", "/food?period=weekly&meal_type=午餐", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data []struct {
			Name     string `json:"name"`
			MealType string `json:"meal_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "午餐", resp.Data[0].MealType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodHandler_List_BadPeriod(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/food", NewFoodHandler().List)

	req := httptest.NewRequest("GET", "/food?period=hourly", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodHandler_Daily(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	today := time.Now()
	mock.ExpectQuery("SELECT .* FROM `food_entries`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "meal_type", "date", "calories", "protein", "carbs", "fats"}).
			AddRow(1, 1, "燕麦粥", "早餐", today, 280, 9.5, 45, 5).
			AddRow(2, 1, "鸡胸肉沙拉", "午餐", today, 350, 32.5, 18, 12.4))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/food/daily", NewFoodHandler().Daily)

	req := httptest.NewRequest("GET", "/food/daily", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data DailyNutrition `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 630, resp.Data.Calories)
	assert.InDelta(t, 42.0, resp.Data.Protein, 0.001)
	assert.Len(t, resp.Data.Meals, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
