package router

import (
	"log"
	"time"

	"lifebook/api"
	"lifebook/config"
	_ "lifebook/docs"
	"lifebook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	vaultHandler, err := api.NewVaultHandler(cfg)
	if err != nil {
		log.Fatalf("初始化密码保险箱失败: %v", err)
	}

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		passwordResetHandler := api.NewPasswordResetHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

			// 忘记密码（邮箱验证码）
			password := auth.Group("/password")
			{
				password.POST("/request-reset", passwordResetHandler.ForgotPassword)
				password.POST("/verify-code", passwordResetHandler.VerifyResetCode)
				password.POST("/reset", passwordResetHandler.ResetPassword)
			}
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 消费记录
			dashboardHandler := api.NewDashboardHandler()
			expenseHandler := api.NewExpenseHandler()
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/dashboard", dashboardHandler.Expense)
				expenses.GET("/detailed-statistics", expenseHandler.DetailedStatistics)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 消费类别
			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.PUT("/:id/budget", categoryHandler.SetBudget)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			// 任务
			taskHandler := api.NewTaskHandler()
			tasks := authorized.Group("/tasks")
			{
				tasks.POST("", taskHandler.Create)
				tasks.GET("", taskHandler.List)
				tasks.GET("/dashboard", taskHandler.Dashboard)
				tasks.GET("/:id", taskHandler.Get)
				tasks.PUT("/:id", taskHandler.Update)
				tasks.PUT("/:id/status", taskHandler.UpdateStatus)
				tasks.DELETE("/:id", taskHandler.Delete)
			}

			// 时间记录
			timeHandler := api.NewTimeHandler()
			timeGroup := authorized.Group("/time")
			{
				timeGroup.GET("/categories", timeHandler.ListCategories)
				timeGroup.POST("/categories", timeHandler.CreateCategory)
				timeGroup.DELETE("/categories/:id", timeHandler.DeleteCategory)
				timeGroup.POST("/entries", timeHandler.CreateEntry)
				timeGroup.GET("/entries", timeHandler.ListEntries)
				timeGroup.GET("/entries/:id", timeHandler.GetEntry)
				timeGroup.PUT("/entries/:id", timeHandler.UpdateEntry)
				timeGroup.DELETE("/entries/:id", timeHandler.DeleteEntry)
				timeGroup.GET("/summary", timeHandler.Summary)
				timeGroup.GET("/dashboard", timeHandler.Dashboard)
			}

			// 饮食记录
			foodHandler := api.NewFoodHandler()
			food := authorized.Group("/food")
			{
				food.POST("", foodHandler.Create)
				food.GET("", foodHandler.List)
				food.GET("/daily", foodHandler.Daily)
				food.GET("/dashboard", foodHandler.Dashboard)
				food.GET("/:id", foodHandler.Get)
				food.PUT("/:id", foodHandler.Update)
				food.DELETE("/:id", foodHandler.Delete)
			}

			// 密码保险箱
			vault := authorized.Group("/vault")
			{
				vault.GET("/categories", vaultHandler.ListCategories)
				vault.POST("/categories", vaultHandler.CreateCategory)
				vault.DELETE("/categories/:id", vaultHandler.DeleteCategory)
				vault.POST("/passwords", vaultHandler.Create)
				vault.GET("/passwords", vaultHandler.List)
				vault.GET("/passwords/:id", vaultHandler.Get)
				vault.POST("/passwords/:id/reveal", vaultHandler.Reveal)
				vault.PUT("/passwords/:id", vaultHandler.Update)
				vault.DELETE("/passwords/:id", vaultHandler.Delete)
			}

			// 导出
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
				export.GET("/pdf", exportHandler.ExportPDF)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
