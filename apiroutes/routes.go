package apiroutes

import (
	"github.com/digitalbox/go-digitalbox-server/api"
	restinterceptors "github.com/digitalbox/go-digitalbox-server/api/interceptors"
	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/hub"
	"github.com/digitalbox/go-digitalbox-server/metrics"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// REST API routes
func ConfigRoutes(router *gin.Engine, dbSelector repository.DBSelector, chatLog repository.ChatLog, chatHub *hub.Hub, env *types.Environment) *gin.Engine {
	// init metrics
	if global.Conf.Prometheus.Enabled {

		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	// SERVICE definitions
	keyStoreService := services.NewKeyStoreService()
	encryptionService := services.NewEncryptionService(keyStoreService)
	userService := services.NewUserService(dbSelector)
	complaintService := services.NewComplaintService(dbSelector, encryptionService)
	documentService := services.NewDocumentService(dbSelector, userService)
	s3Service := services.NewS3Service(env)
	statisticsService := services.NewStatisticsService(complaintService)
	summaryService := services.NewSummaryService(chatLog, env)

	// API definitions
	healthApi := api.NewHealthCheckAPI()
	chatApi := api.NewChatApi(chatHub, chatLog)
	complaintApi := api.NewComplaintApi(complaintService)
	userApi := api.NewUserApi(userService)
	documentApi := api.NewDocumentApi(documentService, s3Service)
	encryptionApi := api.NewEncryptionApi(encryptionService)
	statisticsApi := api.NewAPIStatistics(statisticsService, summaryService)

	// PUBLIC ROOT API
	rootPublicApi := router.Group("/")
	{
		rootPublicApi.GET("/health", healthApi.HealthCheck)
	}

	// the WebSocket endpoint skips the rate limiter, chat traffic is a single
	// long lived connection
	wsApi := router.Group("/api", metrics.MetricsMiddleware())
	{
		wsApi.GET("/v1/chatws", chatApi.WebSocket)
	}

	rootApi := router.Group("/api", metrics.MetricsMiddleware(), restinterceptors.RateLimitMiddleware())
	{
		rootApi.GET("/v1/chat/:complaint_id", chatApi.GetChatHistory)
		rootApi.GET("/v1/chat/:complaint_id/summary", statisticsApi.Summarize)

		rootApi.POST("/v1/complaint", complaintApi.CreateComplaint)
		rootApi.GET("/v1/complaint/:complaint_id", complaintApi.GetComplaint)
		rootApi.GET("/v1/complaint/:complaint_id/archive", complaintApi.ListArchive)
		rootApi.GET("/v1/complaints", complaintApi.ListComplaints)
		rootApi.GET("/v1/ticket/:ticket_id", complaintApi.GetTicket)
		rootApi.PUT("/v1/ticket/:ticket_id", complaintApi.UpdateTicket)

		rootApi.POST("/v1/user", userApi.CreateUser)
		rootApi.GET("/v1/user/:user_id", userApi.GetUser)
		rootApi.POST("/v1/collegue", userApi.CreateCollegue)
		rootApi.GET("/v1/collegue/:collegue_id", userApi.GetCollegue)
		rootApi.GET("/v1/collegue/:collegue_id/documentrequests", documentApi.ListCollegueRequests)
		rootApi.GET("/v1/collegue/:collegue_id/documents", documentApi.ListCollegueDocuments)

		rootApi.POST("/v1/documentrequest", documentApi.CreateDocumentRequest)
		rootApi.GET("/v1/documentrequests/:user_id", documentApi.ListPendingRequests)
		rootApi.POST("/v1/document", documentApi.UploadDocument)

		rootApi.POST("/v1/encrypt", encryptionApi.Encrypt)
		rootApi.PUT("/v1/decrypt", encryptionApi.Decrypt)

		rootApi.GET("/v1/analytics", statisticsApi.GetAnalytics)
	}

	return router
}
