package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandler_Login(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "email", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "testuser", string(hashed), "test@example.com", time.Now(), time.Now(), nil))

	router := gin.New()
	router.POST("/login", NewAuthHandler(testConfig()).Login)

	body := `{"username":"testuser","password":"password123"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.NotEmpty(t, resp.Data.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}).
			AddRow(1, "testuser", string(hashed)))

	router := gin.New()
	router.POST("/login", NewAuthHandler(testConfig()).Login)

	body := `{"username":"testuser","password":"wrong"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 用户名已被占用
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "testuser"))

	router := gin.New()
	router.POST("/register", NewAuthHandler(testConfig()).Register)

	body := `{"username":"testuser","password":"password123"}`
	req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Register_SeedFailureDoesNotBlock(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 用户名未被占用
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// 播种第一条默认类别就失败，注册仍然成功
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expense_categories`").
		WillReturnError(errors.New("seed failure"))

	router := gin.New()
	router.POST("/register", NewAuthHandler(testConfig()).Register)

	body := `{"username":"newuser","password":"password123"}`
	req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "注册成功", resp.Message)
	assert.NotEmpty(t, resp.Data.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}).
			AddRow(1, "testuser", string(hashed)))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/password", NewAuthHandler(testConfig()).ChangePassword)

	body := `{"old_password":"wrong","new_password":"newpassword123"}`
	req := httptest.NewRequest("PUT", "/password", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
