package router

import (
	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, engine *escrow.Engine, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "autocrowd-escrow",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API版本组
	v1 := r.Group("/api/v1")
	{
		campaignHandler := handler.NewCampaignHandler(engine, db)
		contributionHandler := handler.NewContributionHandler(engine, db)
		refundHandler := handler.NewRefundHandler(engine, db)
		milestoneHandler := handler.NewMilestoneHandler(engine)
		eventHandler := handler.NewEventHandler(db)

		// 活动相关路由
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
			campaigns.GET("/:id/events", eventHandler.GetCampaignEvents)

			campaigns.POST("/:id/contributions", contributionHandler.Contribute)
			campaigns.GET("/:id/contributions", contributionHandler.GetContributionRecords)
			campaigns.GET("/:id/contributions/:address", contributionHandler.GetContributionEntry)

			campaigns.POST("/:id/refunds", refundHandler.ClaimRefund)
			campaigns.GET("/:id/refunds", refundHandler.GetCampaignRefunds)

			campaigns.POST("/:id/milestones", milestoneHandler.AddMilestone)
			campaigns.GET("/:id/milestones", milestoneHandler.GetMilestones)
			campaigns.GET("/:id/milestones/:idx", milestoneHandler.GetMilestone)
			campaigns.POST("/:id/milestones/:idx/submit", milestoneHandler.SubmitMilestone)
			campaigns.POST("/:id/milestones/:idx/votes", milestoneHandler.CastVote)
			campaigns.POST("/:id/milestones/:idx/finalize", milestoneHandler.FinalizeVoting)
		}

		// 预言机回调路由
		oracleHandler := handler.NewOracleHandler(engine, &cfg.Oracle)
		v1.POST("/oracle/verdict", oracleHandler.PostVerdict)

		// 验证请求查询路由
		verificationHandler := handler.NewVerificationHandler(db)
		verifications := v1.Group("/verifications")
		{
			verifications.GET("", verificationHandler.GetVerifications)
			verifications.GET("/:requestId", verificationHandler.GetVerification)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
