package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	processPath = "/process"
	// fileField 是 multipart 中文件所在的字段名
	fileField = "file"
	// maxErrorBody 限制错误信息里保留的响应体长度
	maxErrorBody = 512
)

// APIError 表示分析服务返回了非 2xx 状态码
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API请求失败 (状态码: %d): %s", e.StatusCode, e.Message)
}

// Doer 接口，http.Client 和测试替身都满足
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// 全局共享的HTTP客户端，实现连接池化
var (
	sharedHTTPClient *http.Client
	httpClientOnce   sync.Once
)

// getSharedHTTPClient 返回共享的HTTP客户端实例
// 上传请求不设整体超时，请求自行完成或失败
func getSharedHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		sharedHTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	})
	return sharedHTTPClient
}

// Client 是分析服务的客户端
type Client struct {
	baseURL string
	client  Doer
}

// NewClient 创建分析服务客户端
// baseURL: 服务根地址，例如 http://localhost:8000
func NewClient(baseURL string) *Client {
	return NewClientWithDoer(baseURL, nil)
}

// NewClientWithDoer 使用自定义的 Doer 创建客户端，doer 为 nil 时使用共享客户端
func NewClientWithDoer(baseURL string, doer Doer) *Client {
	if doer == nil {
		doer = getSharedHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  doer,
	}
}

// Process 上传文件到 {baseURL}/process 并解析响应
func (c *Client) Process(ctx context.Context, file *SelectedFile) (*ProcessResponse, error) {
	if file == nil {
		return nil, fmt.Errorf("没有选中的文件")
	}

	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processPath, body)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    truncateBody(data, maxErrorBody),
		}
	}

	return DecodeProcessResponse(data)
}

// FetchImage 下载标注后的图片，相对地址按 baseURL 解析
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	resolved, err := c.ResolveURL(imageURL)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取图片失败: %w", err)
	}
	return data, nil
}

// ResolveURL 把服务返回的（可能是相对的）地址转成绝对地址
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("无效的图片地址 %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("无效的服务地址 %q: %w", c.baseURL, err)
	}
	return base.ResolveReference(u).String(), nil
}

func encodeMultipart(file *SelectedFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(fileField, file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("构造上传请求失败: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("构造上传请求失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("构造上传请求失败: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// truncateBody 截断过长的响应体，截断点落在字符边界上
func truncateBody(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return string(data[:cut]) + "..."
}
