// Package handler HTTP处理器：解析请求、调用应用层用例、输出统一响应
package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/internal/application/port"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// bindError 参数绑定或校验失败
func bindError(c *gin.Context, err error) {
	msg := validator.Message(err)
	if msg == "" {
		msg = apperrors.ErrBindError.Message
	}
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, msg)
}

// paramID 解析路径中的正整数ID，失败时已写入响应
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, fmt.Sprintf("%s不合法", name))
		return 0, false
	}
	return uint(id), true
}

// formUpload 读取可选的上传文件，未上传时返回nil
// 返回的close必须在用例执行完后调用
func formUpload(c *gin.Context, field string, maxBytes int64) (*port.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperrors.WithMessage(apperrors.ErrBindError, "读取上传文件失败")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, noop, apperrors.New(apperrors.ErrCodeInvalidParams,
			fmt.Sprintf("图片不能超过%dMB", maxBytes>>20))
	}

	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, noop, apperrors.Wrap(err, "读取上传文件失败")
	}
	return &port.Upload{Filename: fh.Filename, Size: fh.Size, Reader: f}, func() { _ = f.Close() }, nil
}
