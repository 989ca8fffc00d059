package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github-issue-scout/internal/common"
)

// 三个 JSON 文件存储（收藏夹、浏览历史、标签映射）共用的读写底座
//
// 选平面 JSON 文件而不是数据库：数据量是个位数到几百条，
// 用户还能直接拿编辑器看和改，引入数据库纯属负担

const (
	dataDirPerms  = 0o700
	dataFilePerms = 0o600
)

// loadJSONFile 读取并反序列化。文件不存在不算错误，首次运行就是这样
func loadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("读取数据文件失败: %s", path), err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("数据文件格式损坏: %s", path), err)
	}
	return nil
}

// saveJSONFile 先写临时文件再改名，写到一半断电也不会弄坏原文件
func saveJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), dataDirPerms); err != nil {
		return common.WrapError(common.ErrCodeStorage, "创建数据目录失败", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return common.WrapError(common.ErrCodeStorage, "序列化数据失败", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, dataFilePerms); err != nil {
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("写入数据文件失败: %s", path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("数据文件改名失败: %s", path), err)
	}
	return nil
}
