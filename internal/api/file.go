package api

import (
	"fmt"
	"os"
	"path/filepath"
)

// SelectedFile 是用户选中的待上传文件
type SelectedFile struct {
	Name string
	Data []byte
}

// LoadSelectedFile 从磁盘读取文件，不做任何格式校验
func LoadSelectedFile(path string) (*SelectedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return &SelectedFile{
		Name: filepath.Base(path),
		Data: data,
	}, nil
}
