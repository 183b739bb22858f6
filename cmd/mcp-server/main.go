package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meetingtools/fathom-search-mcp/cmd/mcp-server/config"
	"github.com/meetingtools/fathom-search-mcp/internal/audit"
	"github.com/meetingtools/fathom-search-mcp/internal/middleware"
	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
	"github.com/meetingtools/fathom-search-mcp/pkg/logger"
	"github.com/meetingtools/fathom-search-mcp/pkg/search"
)

var startTime = time.Now()

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 验证配置
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// 初始化结构化日志
	if _, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Environment,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 创建会议记录源客户端
	client := fathom.NewClient(cfg.Source.BaseURL, cfg.Source.APIKey, time.Duration(cfg.Source.Timeout)*time.Second)

	// 审计日志（可选）
	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditLogger = audit.NewLogger(cfg.Audit.Path)
	}

	// 搜索服务：规划 → 聚合 → 过滤 → 匹配 → 整形
	svc := search.NewService(client, cfg.Source.Descending, search.LoggerHook())

	// 打印启动信息
	logger.L().Info("=== Meeting Search MCP Server ===",
		"environment", cfg.Server.Environment,
		"http_port", cfg.Server.HTTPPort,
		"source_url", cfg.Source.BaseURL,
		"source_auth_configured", cfg.HasSourceAuth(),
		"audit_enabled", cfg.Audit.Enabled,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	mcpHandler := NewMCPHandler(svc, auditLogger)
	router.POST("/mcp", gin.WrapH(mcpHandler))
	router.OPTIONS("/mcp", gin.WrapH(mcpHandler))
	router.GET("/health", healthCheckHandler(cfg))
	router.GET("/readiness", readinessCheckHandler(cfg, client))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := cfg.GetServerAddress()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.L().Info("starting MCP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("shutdown signal received, shutting down MCP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("MCP Server forced to shutdown: %v", err)
	}
	logger.L().Info("MCP server shutdown complete")
}

// HealthCheckResponse 健康检查响应
type HealthCheckResponse struct {
	Status         string    `json:"status"`
	Service        string    `json:"service"`
	Version        string    `json:"version"`
	Uptime         string    `json:"uptime"`
	Timestamp      time.Time `json:"timestamp"`
	SourceURL      string    `json:"source_url"`
	AuthConfigured bool      `json:"auth_configured"`
}

// healthCheckHandler 健康检查处理器
// 只反映进程自身的存活状态，不探测远端记录源
func healthCheckHandler(cfg *config.MCPConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthCheckResponse{
			Status:         "healthy",
			Service:        "meeting-search-mcp",
			Version:        serverVersion,
			Uptime:         time.Since(startTime).String(),
			Timestamp:      time.Now(),
			SourceURL:      cfg.Source.BaseURL,
			AuthConfigured: cfg.HasSourceAuth(),
		})
	}
}

// ReadinessCheckResponse 就绪检查响应
type ReadinessCheckResponse struct {
	Status          string    `json:"status"`
	Service         string    `json:"service"`
	Timestamp       time.Time `json:"timestamp"`
	SourceURL       string    `json:"source_url"`
	SourceReachable bool      `json:"source_reachable"`
	AuthConfigured  bool      `json:"auth_configured"`
}

// readinessCheckHandler 就绪检查处理器
// 探测远端记录源：空过滤拉一页即可判断连通性与凭证
func readinessCheckHandler(cfg *config.MCPConfig, client *fathom.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		reachable := checkSourceReachability(ctx, client)

		status := "ready"
		httpStatus := http.StatusOK
		if !reachable {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, ReadinessCheckResponse{
			Status:          status,
			Service:         "meeting-search-mcp",
			Timestamp:       time.Now(),
			SourceURL:       cfg.Source.BaseURL,
			SourceReachable: reachable,
			AuthConfigured:  cfg.HasSourceAuth(),
		})
	}
}

// checkSourceReachability 检查记录源是否可达
func checkSourceReachability(ctx context.Context, client *fathom.Client) bool {
	_, err := client.ListMeetings(ctx, fathom.ListFilters{}, "")
	return err == nil
}
