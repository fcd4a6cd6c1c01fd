package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse 表示分析服务返回了无法识别的响应体
var ErrMalformedResponse = errors.New("响应格式异常")

// ProcessResponse 是 POST /process 的响应
// 所有字段都是可选的，缺失或类型不对时为 nil
type ProcessResponse struct {
	OriginalImageURL  *string `json:"original_image_url,omitempty"`
	AnnotatedImageURL *string `json:"annotated_image_url,omitempty"`
	Report            *string `json:"report,omitempty"`
}

// ReportOrEmpty 返回报告内容，缺失时返回空字符串
func (r *ProcessResponse) ReportOrEmpty() string {
	if r == nil || r.Report == nil {
		return ""
	}
	return *r.Report
}

// DecodeProcessResponse 宽松地解析响应体
// 顶层必须是 JSON 对象；单个字段类型不符时按缺失处理，而不是整体失败
func DecodeProcessResponse(data []byte) (*ProcessResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if fields == nil {
		// "null"
		return nil, fmt.Errorf("%w: 响应体为 null", ErrMalformedResponse)
	}

	resp := &ProcessResponse{
		OriginalImageURL:  optionalString(fields["original_image_url"]),
		AnnotatedImageURL: optionalString(fields["annotated_image_url"]),
		Report:            optionalString(fields["report"]),
	}

	// 空 URL 等同于没有图片
	if resp.AnnotatedImageURL != nil && *resp.AnnotatedImageURL == "" {
		resp.AnnotatedImageURL = nil
	}
	if resp.OriginalImageURL != nil && *resp.OriginalImageURL == "" {
		resp.OriginalImageURL = nil
	}

	return resp, nil
}

func optionalString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
