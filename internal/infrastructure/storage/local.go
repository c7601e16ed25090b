// Package storage 图片存储
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
)

// ErrInvalidPath 文件名或URL越出存储目录
var ErrInvalidPath = errors.New("invalid file path")

// LocalStorage 本地磁盘存储，文件通过静态路由对外访问
type LocalStorage struct {
	dir       string // 落盘目录
	urlPrefix string // 对外访问前缀，如/UploadedFiles
	logger    *zap.Logger
}

var _ port.FileStorage = (*LocalStorage)(nil)

// NewLocalStorage 创建本地存储，目录不存在时创建
func NewLocalStorage(dir, urlPrefix string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		logger:    logger,
	}, nil
}

// Dir 落盘目录
func (s *LocalStorage) Dir() string { return s.dir }

// URLPrefix 对外访问前缀
func (s *LocalStorage) URLPrefix() string { return s.urlPrefix }

// Save 写入文件，写入失败时删除半成品
func (s *LocalStorage) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}

	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	s.logger.Debug("file saved", zap.String("name", name))
	return path.Join(s.urlPrefix, name), nil
}

// Delete 按URL删除，文件不存在时不报错
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	if url == "" {
		return nil
	}
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return fmt.Errorf("%w: %s", ErrInvalidPath, url)
	}

	name, err := cleanName(strings.TrimPrefix(url, s.urlPrefix+"/"))
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// cleanName 只允许存储目录下的单层文件名
func cleanName(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return name, nil
}
