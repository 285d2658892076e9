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

func TestTaskHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `task_items`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/tasks", NewTaskHandler().Create)

	deadline := time.Now().AddDate(0, 0, 7).Format("2006-01-02 15:04:05")
	body := `{"title":"写周报","description":"整理本周进展","deadline":"` + deadline + `"}`
	req := httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskHandler_Create_PastDeadline(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/tasks", NewTaskHandler().Create)

	past := time.Now().AddDate(0, 0, -1).Format("2006-01-02 15:04:05")
	body := `{"title":"迟到的任务","deadline":"` + past + `"}`
	req := httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskHandler_UpdateStatus_Complete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `task_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "status"}).
			AddRow(1, 1, "写周报", 1))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `task_items` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/tasks/:id/status", NewTaskHandler().UpdateStatus)

	body := `{"status":2}`
	req := httptest.NewRequest("PUT", "/tasks/1/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "状态更新成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskHandler_List_OverdueFlag(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)
	mock.ExpectQuery("SELECT .* FROM `task_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "status", "deadline"}).
			AddRow(1, 1, "逾期任务", 0, yesterday).
			AddRow(2, 1, "正常任务", 0, nextWeek))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/tasks", NewTaskHandler().List)

	req := httptest.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data []TaskView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].Overdue)
	assert.False(t, resp.Data[1].Overdue)
	require.NoError(t, mock.ExpectationsWereMet())
}
