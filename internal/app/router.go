package app

import (
	"elearning_backend/docs"
	"elearning_backend/internal/config"
	"elearning_backend/internal/middleware"
	"elearning_backend/internal/model"
	"elearning_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/auth/verify-email", c.auth.VerifyEmail)
	}

	// 课程总览：可选认证，游客拿到全锁定的树
	router.GET("/api/modules", middleware.TryAuthMiddleware(cfg), c.learning.GetModules)

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.Profile)

		authGroup.GET("/contents/:id", c.learning.GetContent)
		authGroup.POST("/content-progress/:id", c.progress.ReportPlayback)

		authGroup.GET("/quiz/:id", c.quiz.GetQuiz)
		authGroup.POST("/quiz/:id/submit", c.quiz.SubmitQuiz)

		authGroup.GET("/notifications", c.notification.List)
		authGroup.PATCH("/notifications/:id/read", c.notification.MarkRead)
	}

	// 管理员相关接口
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.GET("/contents", c.learning.AdminContents)
	}
}
