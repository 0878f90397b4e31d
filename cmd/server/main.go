// Package main 是应用程序的入口点。
package main

import (
	"clauselens-go/internal/config"
	"clauselens-go/internal/extractor"
	"clauselens-go/internal/handler"
	"clauselens-go/internal/imaging"
	"clauselens-go/internal/middleware"
	"clauselens-go/internal/pipeline"
	"clauselens-go/internal/render"
	"clauselens-go/internal/repository"
	"clauselens-go/internal/service"
	"clauselens-go/pkg/database"
	"clauselens-go/pkg/embedding"
	"clauselens-go/pkg/llm"
	"clauselens-go/pkg/log"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化外部客户端
	llmClient := llm.NewClient(cfg.LLM, cfg.Vision.TimeoutSeconds)
	embeddingClient := embedding.NewClient(cfg.Embedding)

	// 4. 初始化向量索引后端（默认进程内索引, 生命周期与服务进程一致）
	var vectorRepo repository.VectorRepository
	switch cfg.Index.Backend {
	case "elasticsearch":
		repo, err := repository.NewESVectorRepository(cfg.Index.Elasticsearch, cfg.Embedding.Dimensions)
		if err != nil {
			log.Fatalf("Elasticsearch 向量索引初始化失败: %v", err)
		}
		vectorRepo = repo
		log.Info("向量索引后端: elasticsearch")
	default:
		vectorRepo = repository.NewMemoryVectorRepository()
		log.Info("向量索引后端: memory")
	}

	// 5. 初始化问答历史（可选, Redis 未配置或不可达时自动关闭）
	var conversationRepo repository.ConversationRepository
	if cfg.Redis.Addr != "" {
		if rdb := database.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); rdb != nil {
			conversationRepo = repository.NewConversationRepository(rdb)
		}
	}

	// 6. 组装抽取流水线：两个整文档级方法 + 两个页面级方法
	normalizer := imaging.NewNormalizer()
	renderer := render.NewRenderer(cfg.Render.DPI)
	processor := pipeline.NewProcessor(
		renderer,
		[]extractor.DocumentExtractor{
			extractor.NewDigitalTextExtractor(),
			extractor.NewTableExtractor(cfg.Tables),
		},
		[]extractor.PageExtractor{
			extractor.NewOCRExtractor(cfg.OCR, normalizer),
			extractor.NewVisionExtractor(cfg.Vision, llmClient),
		},
	)

	// 7. 初始化 Service (依赖注入)
	indexService := service.NewIndexService(embeddingClient, vectorRepo)
	insightService := service.NewInsightService(llmClient)
	analysisService := service.NewAnalysisService(processor, indexService, insightService)
	askService := service.NewAskService(indexService, llmClient, conversationRepo)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	// 9. 注册路由
	r.GET("/", handler.NewHealthHandler().Describe)
	r.POST("/analyze", handler.NewAnalyzeHandler(analysisService).Analyze)
	askHandler := handler.NewAskHandler(askService)
	r.POST("/ask", askHandler.Ask)
	r.GET("/documents/:docId/conversation", askHandler.History)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
