package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timenest/backend/config"
	"timenest/backend/internal/api/handler"
	"timenest/backend/internal/api/middleware"
)

// maxBodyBytes 请求体上限，放宽到 8MB 以容纳 ICS 导入
const maxBodyBytes = 8 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/:id", h.Course.GetCourse)
			courses.POST("", h.Course.CreateCourse)
			courses.PUT("/:id", h.Course.UpdateCourse)
			courses.DELETE("/:id", h.Course.DeleteCourse)
		}

		// 周期性安排模块
		plans := v1.Group("/plans")
		{
			plans.GET("", h.Plan.ListPlans)
			plans.GET("/:id", h.Plan.GetPlan)
			plans.POST("", h.Plan.CreatePlan)
			plans.PUT("/:id", h.Plan.UpdatePlan)
			plans.DELETE("/:id", h.Plan.DeletePlan)
		}

		// 轮换模板模块
		cyclePatterns := v1.Group("/cycle-patterns")
		{
			cyclePatterns.GET("", h.Cycle.ListPatterns)
			cyclePatterns.GET("/:id", h.Cycle.GetPattern)
			cyclePatterns.POST("", h.Cycle.CreatePattern)
			cyclePatterns.PUT("/:id", h.Cycle.UpdatePattern)
			cyclePatterns.DELETE("/:id", h.Cycle.DeletePattern)
			cyclePatterns.POST("/:id/commit", h.Cycle.CommitPattern)
		}

		// 调课/停课模块
		overrides := v1.Group("/overrides")
		{
			overrides.GET("", h.Override.ListOverrides)
			overrides.GET("/:id", h.Override.GetOverride)
			overrides.POST("", h.Override.CreateOverride)
			overrides.PUT("/:id", h.Override.UpdateOverride)
			overrides.DELETE("/:id", h.Override.DeleteOverride)
			overrides.POST("/sweep", h.Override.SweepOverrides)
		}

		// 学期模块
		terms := v1.Group("/terms")
		{
			terms.GET("", h.Term.ListTerms)
			terms.GET("/active", h.Term.GetActiveTerm)
			terms.GET("/:id", h.Term.GetTerm)
			terms.POST("", h.Term.CreateTerm)
			terms.PUT("/:id", h.Term.UpdateTerm)
			terms.PUT("/:id/activate", h.Term.ActivateTerm)
			terms.DELETE("/:id", h.Term.DeleteTerm)
		}

		// 课表解析模块
		timetable := v1.Group("/timetable")
		{
			timetable.GET("/day/:date", h.Timetable.GetDay)
			timetable.GET("/week/:date", h.Timetable.GetWeek)
			timetable.POST("/check-conflicts", h.Timetable.CheckConflicts)
			timetable.POST("/import-ics", h.Timetable.ImportICS)
			timetable.GET("/export-ics", h.Timetable.ExportICS)
			timetable.GET("/export-excel/:date", h.Timetable.ExportWeekExcel)
		}
	}

	return r
}
