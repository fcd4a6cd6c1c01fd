package tui

import "github.com/Zacy-Sokach/DentalXray/internal/api"

// fileLoadedMsg 文件选择器选中的文件已读入内存
type fileLoadedMsg struct {
	path string
	file *api.SelectedFile
	err  error
}

// processResultMsg 一次上传请求结束
type processResultMsg struct {
	file string
	resp *api.ProcessResponse
	err  error
}

// previewMsg 标注图片的终端预览已生成
type previewMsg struct {
	url  string
	text string
	err  error
}
