// Package mockserver 提供本地可用的分析服务替身
//
// 它实现与真实服务相同的 POST /process 接口：保存上传的图片并通过 /images 提供访问，
// 返回一份固定格式的 Markdown 报告。不做任何图像标注或模型推理。
package mockserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	DefaultAddr          = "localhost:8000"
	DefaultImagesDir     = "images"
	DefaultMaxUploadSize = 32 << 20
)

type Config struct {
	Addr string
	// ImagesDir 保存上传文件的目录
	ImagesDir string
	// PublicURL 返回给客户端的图片地址前缀，为空时按请求的 Host 推断
	PublicURL     string
	MaxUploadSize int64
}

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        Config
	log        *zap.Logger
}

func New(cfg Config, log *zap.Logger) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ImagesDir == "" {
		cfg.ImagesDir = DefaultImagesDir
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.ImagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// 与原服务一致，允许任意来源的浏览器访问
	router.Use(gin.Recovery(), requestLogger(log), cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"*"},
		AllowHeaders:    []string{"*"},
	}))
	router.MaxMultipartMemory = cfg.MaxUploadSize

	h := newHandler(cfg, log)

	router.GET("/health", h.HealthCheck)
	router.POST("/process", h.Process)
	router.Static("/images", cfg.ImagesDir)

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Addr,
			Handler:        router,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		router: router,
		cfg:    cfg,
		log:    log,
	}

	log.Info("Mock server created",
		zap.String("address", cfg.Addr),
		zap.String("images_dir", cfg.ImagesDir))

	return server, nil
}

// Handler 返回路由，测试里直接挂到 httptest 上
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.log.Info("Mock server is running", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down mock server")
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
