package book

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ErrInvalidImage 封面格式不支持
var ErrInvalidImage = apperrors.New(apperrors.ErrCodeInvalidParams, "封面仅支持jpg、jpeg、png、webp、gif")

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// AddBookUseCase 上架图书用例（管理员）
// 1. 封面图落盘，得到/UploadedFiles/xxx的相对URL
// 2. 调用领域服务校验并保存
// 3. 保存失败时删除已落盘的封面
type AddBookUseCase struct {
	bookService book.Service
	storage     port.FileStorage
	invalidator *Invalidator
	now         func() time.Time
}

// NewAddBookUseCase 创建上架用例
func NewAddBookUseCase(bookService book.Service, storage port.FileStorage, invalidator *Invalidator) *AddBookUseCase {
	return &AddBookUseCase{
		bookService: bookService,
		storage:     storage,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// AddBookRequest 上架请求
type AddBookRequest struct {
	ISBN            string
	Title           string
	Author          string
	Publisher       string
	Genre           string
	Language        string
	Format          string
	Description     string
	Price           int64 // 分
	Stock           int
	PublicationDate time.Time
	Cover           *port.Upload // 可为空
}

// Execute 执行上架
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookDetail, error) {
	coverURL, err := saveCover(ctx, uc.storage, req.Cover)
	if err != nil {
		return nil, err
	}

	b := &book.Book{
		ISBN:            req.ISBN,
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Publisher:       strings.TrimSpace(req.Publisher),
		Genre:           strings.TrimSpace(req.Genre),
		Language:        strings.TrimSpace(req.Language),
		Format:          strings.TrimSpace(req.Format),
		Description:     req.Description,
		Price:           req.Price,
		Stock:           req.Stock,
		CoverURL:        coverURL,
		PublicationDate: req.PublicationDate,
	}
	if err := uc.bookService.AddBook(ctx, b); err != nil {
		removeCover(ctx, uc.storage, coverURL)
		return nil, err
	}

	uc.invalidator.Book(ctx)
	return ToBookDetail(b, nil, uc.now()), nil
}

// saveCover 保存封面，文件名为随机UUID加原扩展名
func saveCover(ctx context.Context, storage port.FileStorage, upload *port.Upload) (string, error) {
	if upload == nil || upload.Reader == nil {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedImageExt[ext] {
		return "", ErrInvalidImage
	}
	url, err := storage.Save(ctx, uuid.NewString()+ext, upload.Reader)
	if err != nil {
		return "", apperrors.Wrap(err, "保存封面失败")
	}
	return url, nil
}

func removeCover(ctx context.Context, storage port.FileStorage, url string) {
	if url != "" {
		_ = storage.Delete(ctx, url)
	}
}
