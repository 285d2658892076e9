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

func TestExpenseHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 查询类别
	mock.ExpectQuery("SELECT .* FROM `expense_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "budget_amount", "monthly_fixed_budget"}).
			AddRow(1, 1, "Personal", 0, 0))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/expenses", NewExpenseHandler().Create)

	body := `{"amount":99.99,"category_id":1,"date":"` + time.Now().Format("2006-01-02") + `","reason":"午餐"}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_FutureDate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/expenses", NewExpenseHandler().Create)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	body := `{"amount":99.99,"category_id":1,"date":"` + tomorrow + `","reason":"午餐"}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	// 日期校验在任何 SQL 之前
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_MissingReason(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/expenses", NewExpenseHandler().Create)

	// 缺备注在绑定层被拒，纯空白备注在业务层被拒
	for _, body := range []string{
		`{"amount":99.99,"category_id":1,"date":"` + time.Now().Format("2006-01-02") + `"}`,
		`{"amount":99.99,"category_id":1,"date":"` + time.Now().Format("2006-01-02") + `","reason":"   "}`,
	} {
		req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 400, w.Code)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_BudgetExhausted(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 一次性预算 100，已花 80，再记 50 被拒
	mock.ExpectQuery("SELECT .* FROM `expense_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "budget_amount", "monthly_fixed_budget"}).
			AddRow(2, 1, "Personal", 100, 0))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(80))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/expenses", NewExpenseHandler().Create)

	body := `{"amount":50,"category_id":2,"date":"` + time.Now().Format("2006-01-02") + `","reason":"相机"}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "预算余额不足")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/expenses/:id", NewExpenseHandler().Get)

	req := httptest.NewRequest("GET", "/expenses/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_DetailedStatistics(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) as total, COUNT\\(\\*\\) as cnt FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"total", "cnt"}).AddRow(200.0, 4))
	mock.ExpectQuery("SELECT expenses.category_id, expense_categories.name as category_name.*JOIN expense_categories").
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "category_name", "total", "count"}).
			AddRow(1, "Personal", 150.0, 3).
			AddRow(2, "Home", 50.0, 1))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/expenses/detailed-statistics", NewExpenseHandler().DetailedStatistics)

	req := httptest.NewRequest("GET", "/expenses/detailed-statistics?range_type=month&year_month=2026-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			TotalAmount   float64 `json:"total_amount"`
			TotalCount    int64   `json:"total_count"`
			CategoryStats []struct {
				CategoryName string  `json:"category_name"`
				Percentage   float64 `json:"percentage"`
			} `json:"category_stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200.0, resp.Data.TotalAmount)
	assert.Equal(t, int64(4), resp.Data.TotalCount)
	require.Len(t, resp.Data.CategoryStats, 2)
	assert.Equal(t, 75.0, resp.Data.CategoryStats[0].Percentage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_DetailedStatistics_MissingRangeType(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/expenses/detailed-statistics", NewExpenseHandler().DetailedStatistics)

	req := httptest.NewRequest("GET", "/expenses/detailed-statistics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "amount", "date", "reason"}).
			AddRow(2, 1, 1, 50, time.Now(), "晚餐").
			AddRow(1, 1, 1, 30, time.Now(), "午餐"))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/expenses", NewExpenseHandler().List)

	req := httptest.NewRequest("GET", "/expenses?page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data PageResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}
