package mockserver

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
)

// multipartOverhead 请求体上限在文件上限之外为 multipart 边界和表单头留出的余量
const multipartOverhead = 64 << 10

type handler struct {
	cfg Config
	log *zap.Logger
}

func newHandler(cfg Config, log *zap.Logger) *handler {
	return &handler{cfg: cfg, log: log}
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// Process 保存上传文件并返回图片地址和报告
func (h *handler) Process(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadSize+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Warn("Upload exceeds size limit", zap.Int64("limit", h.cfg.MaxUploadSize))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		h.log.Warn("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	if file.Size > h.cfg.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".png"
	}
	name := uuid.NewString() + ext
	path := filepath.Join(h.cfg.ImagesDir, name)

	if err := c.SaveUploadedFile(file, path); err != nil {
		h.log.Error("Failed to save upload", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	info := uploadInfo{Name: file.Filename, Size: file.Size}
	if w, hgt, err := imageDimensions(path); err == nil {
		info.Width, info.Height = w, hgt
	} else {
		h.log.Debug("Upload is not a decodable image", zap.String("file", file.Filename), zap.Error(err))
	}

	imageURL := h.publicURL(c) + "/images/" + name

	h.log.Info("Upload processed",
		zap.String("file", file.Filename),
		zap.String("stored_as", name),
		zap.Int64("size", file.Size))

	c.JSON(http.StatusOK, gin.H{
		"original_image_url":  imageURL,
		"annotated_image_url": imageURL,
		"report":              buildReport(info),
	})
}

func (h *handler) publicURL(c *gin.Context) string {
	if h.cfg.PublicURL != "" {
		return strings.TrimRight(h.cfg.PublicURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

type uploadInfo struct {
	Name   string
	Size   int64
	Width  int
	Height int
}

// buildReport 生成固定格式的报告，内容只描述上传文件本身
func buildReport(info uploadInfo) string {
	var sb strings.Builder
	sb.WriteString("# Findings\n\n")

	details := fmt.Sprintf("Mock analysis of `%s` (%s", info.Name, humanize.IBytes(uint64(info.Size)))
	if info.Width > 0 && info.Height > 0 {
		details += fmt.Sprintf(", %d×%d px", info.Width, info.Height)
	}
	sb.WriteString(details + ").\n\n")

	sb.WriteString("No pathologies detected.\n\n")
	sb.WriteString("## Next steps\n\n")
	sb.WriteString("- This report was produced by the local mock service.\n")
	sb.WriteString("- No model inference was performed; use a real analysis service for diagnosis.\n")
	return sb.String()
}
