package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"Hermes-Gateway/internal/conf"
	"Hermes-Gateway/internal/data"
	"Hermes-Gateway/internal/handler"
	"Hermes-Gateway/internal/llm"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/middleware"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/security"
	"Hermes-Gateway/internal/service"
	"Hermes-Gateway/internal/storage"
)

func main() {
	// 1. 加载配置 + 日志
	cfg := conf.LoadConfig()
	logger.Init(gin.Mode() == gin.ReleaseMode)
	defer logger.Sync()

	// 2. 初始化数据层 (Postgres, Redis, MinIO)
	d, cleanup, err := data.NewData(cfg)
	if err != nil {
		log.Fatalf("❌ 数据层初始化失败: %v", err)
	}
	defer cleanup()

	// 3. 初始化 Repository
	userRepo := repository.NewUserRepository(d.DB)
	orgRepo := repository.NewOrganizationRepository(d.DB)
	projRepo := repository.NewProjectRepository(d.DB)
	memberRepo := repository.NewProjectUserRepository(d.DB)
	keyRepo := repository.NewAPIKeyRepository(d.DB)
	credRepo := repository.NewCredentialRepository(d.DB)
	docRepo := repository.NewDocumentRepository(d.DB)
	collRepo := repository.NewCollectionRepository(d.DB)
	threadRepo := repository.NewThreadResultRepository(d.DB)

	// 4. 安全组件：凭证加密器 + JWT 签发器
	cipher, err := security.NewCredentialCipher(cfg.Auth.SecretKey)
	if err != nil {
		log.Fatalf("❌ 凭证加密器初始化失败: %v", err)
	}
	tokens := security.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry)

	// 5. 外部依赖：OpenAI 客户端 + 对象存储 + 回调投递
	llmClient := llm.NewOpenAIClient(cfg.LLM.OpenAIAPIKey)
	docStore := storage.NewMinioStorage(d.Minio, d.Bucket)
	callbacks := service.NewCallbackPoster(cfg.App.CallbackTimeout)

	// 6. 初始化服务层
	credSvc := service.NewCredentialService(credRepo, orgRepo, cipher)
	collSvc := service.NewCollectionService(collRepo, docRepo, docStore, llmClient, callbacks)
	docSvc := service.NewDocumentService(docRepo, docStore, collSvc)
	threadSvc := service.NewThreadService(llmClient, threadRepo, d.Redis, callbacks)
	orgSvc := service.NewOrganizationService(orgRepo)
	projSvc := service.NewProjectService(projRepo, orgRepo, memberRepo, userRepo)
	acctSvc := service.NewAccountService(userRepo, orgRepo, projRepo, memberRepo, keyRepo)

	// 7. 鉴权中间件
	authn := middleware.NewAuthenticator(userRepo, keyRepo, orgRepo, tokens)
	scope := middleware.NewProjectScope(projRepo, orgRepo, memberRepo)
	orgAccess := middleware.NewOrgAccess(memberRepo)

	// 8. 初始化 Handler (控制器)
	credH := handler.NewCredentialHandler(credSvc, orgAccess)
	collH := handler.NewCollectionHandler(collSvc)
	docH := handler.NewDocumentHandler(docSvc)
	threadH := handler.NewThreadHandler(threadSvc)
	orgH := handler.NewOrgHandler(orgSvc)
	projH := handler.NewProjectHandler(projSvc)
	acctH := handler.NewAccountHandler(acctSvc, orgAccess)

	// 9. 初始化 Gin Web Server
	r := gin.Default()
	r.Use(middleware.TraceMiddleware())

	// CORS 跨域配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 10. 注册路由
	api := r.Group("/api/v1")
	{
		// 开通入口，拿到 API Key 之后才能访问其余接口
		api.POST("/onboard", acctH.Onboard)

		protected := api.Group("/")
		protected.Use(authn.Authenticate())
		{
			// --- 组织管理（创建/列表/删除仅超级用户）---
			admin := protected.Group("/")
			admin.Use(authn.RequireSuperuser())
			{
				admin.POST("/organizations", orgH.Create)
				admin.GET("/organizations", orgH.List)
				admin.DELETE("/organizations/:org_id", orgH.Delete)
				admin.POST("/projects", projH.Create)
				admin.DELETE("/projects/:project_id", projH.Delete)
			}
			// 组织内接口：只有本组织成员（或超级用户）能进
			protected.GET("/organizations/:org_id", orgAccess.Verify(), orgH.Get)
			protected.PUT("/organizations/:org_id", orgAccess.Verify(), orgH.Update)
			protected.GET("/organizations/:org_id/projects", orgAccess.Verify(), projH.ListByOrg)

			// --- API Key（签发/列表限本组织，吊销在 Handler 里校验归属）---
			protected.POST("/organizations/:org_id/api-keys", orgAccess.Verify(), acctH.CreateAPIKey)
			protected.GET("/organizations/:org_id/api-keys", orgAccess.Verify(), acctH.ListAPIKeys)
			protected.DELETE("/api-keys/:key_id", acctH.RevokeAPIKey)

			// --- 项目级接口（成员/组织 Key/超级用户可访问）---
			scoped := protected.Group("/projects/:project_id")
			scoped.Use(scope.Verify())
			{
				scoped.GET("", projH.Get)
				scoped.PUT("", projH.Update)
				scoped.POST("/users", projH.AddUser)
				scoped.DELETE("/users/:user_id", projH.RemoveUser)
				scoped.GET("/users", projH.ListUsers)
			}

			// --- Provider 凭证 ---
			protected.POST("/credentials", credH.Create)
			protected.GET("/credentials", credH.List)
			protected.PUT("/credentials", credH.Update)
			protected.DELETE("/credentials", credH.DeleteScope)
			protected.GET("/credentials/:provider", credH.GetProvider)
			protected.DELETE("/credentials/:provider", credH.DeleteProvider)

			// --- 文档 ---
			protected.POST("/documents/upload", docH.Upload)
			protected.GET("/documents", docH.List)
			protected.POST("/documents/delete", docH.Remove)
			protected.GET("/documents/:doc_id", docH.Stat)
			protected.GET("/documents/:doc_id/download", docH.Download)

			// --- Collection (assistant + vector store) ---
			protected.POST("/collections/create", collH.Create)
			protected.POST("/collections/delete", collH.Delete)
			protected.GET("/collections/list", collH.List)
			protected.GET("/collections/info/:collection_id", collH.Info)
			protected.GET("/collections/docs/:collection_id", collH.Documents)

			// --- 会话线程 ---
			protected.POST("/threads", threadH.Start)
			protected.POST("/threads/sync", threadH.RunSync)
			protected.GET("/threads/:thread_id", threadH.GetResult)
		}
	}

	logger.L.Infof("🚀 Hermes Gateway 已启动，监听端口 :%s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("❌ Server 启动失败: %v", err)
	}
}
