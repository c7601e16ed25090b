package book

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Service 图书领域服务（目录维护的业务规则）
type Service interface {
	// AddBook 上架图书
	// 业务规则：ISBN合法且不重复、书名作者非空、价格1-999999分、库存≥0
	AddBook(ctx context.Context, book *Book) error

	// UpdateBook 按Patch中非空字段更新
	UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error)

	// SetDiscount 设置折扣及生效窗口
	SetDiscount(ctx context.Context, id uint, discount decimal.Decimal, start, end *time.Time) (*Book, error)

	// DeleteBook 下架（软删除）
	DeleteBook(ctx context.Context, id uint) error
}

// Patch 图书可修改字段，nil表示不修改
type Patch struct {
	ISBN            *string
	Title           *string
	Author          *string
	Publisher       *string
	Genre           *string
	Language        *string
	Format          *string
	Description     *string
	Price           *int64
	Stock           *int
	CoverURL        *string
	PublicationDate *time.Time
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AddBook(ctx context.Context, book *Book) error {
	book.ISBN = NormalizeISBN(book.ISBN)
	if err := validate(book); err != nil {
		return err
	}
	if err := s.ensureISBNFree(ctx, book.ISBN, 0); err != nil {
		return err
	}

	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	// 唯一索引兜底并发重复，Repository转换为ErrISBNDuplicate
	return s.repo.Create(ctx, book)
}

func (s *service) UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ISBN != nil {
		isbn := NormalizeISBN(*patch.ISBN)
		if isbn != book.ISBN {
			if err := s.ensureISBNFree(ctx, isbn, id); err != nil {
				return nil, err
			}
		}
		book.ISBN = isbn
	}
	setString(&book.Title, patch.Title)
	setString(&book.Author, patch.Author)
	setString(&book.Publisher, patch.Publisher)
	setString(&book.Genre, patch.Genre)
	setString(&book.Language, patch.Language)
	setString(&book.Format, patch.Format)
	setString(&book.Description, patch.Description)
	setString(&book.CoverURL, patch.CoverURL)
	if patch.Price != nil {
		book.Price = *patch.Price
	}
	if patch.Stock != nil {
		book.Stock = *patch.Stock
	}
	if patch.PublicationDate != nil {
		book.PublicationDate = *patch.PublicationDate
	}

	if err := validate(book); err != nil {
		return nil, err
	}
	book.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) SetDiscount(ctx context.Context, id uint, discount decimal.Decimal, start, end *time.Time) (*Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := book.SetDiscount(discount, start, end); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) DeleteBook(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ensureISBNFree ISBN未被其他图书（selfID以外）占用
func (s *service) ensureISBNFree(ctx context.Context, isbn string, selfID uint) error {
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing.ID != selfID {
		return ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return err
	}
	return nil
}

func validate(b *Book) error {
	if !IsValidISBN(b.ISBN) {
		return ErrInvalidISBN
	}
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return ErrInvalidTitle
	}
	if b.Price < 1 || b.Price > 999999 {
		return ErrInvalidPrice
	}
	if b.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

var nonDigit = regexp.MustCompile(`[^0-9Xx]`)

// NormalizeISBN 去除分隔符（978-7-115-42802-8 → 9787115428028）
func NormalizeISBN(isbn string) string {
	return strings.ToUpper(nonDigit.ReplaceAllString(isbn, ""))
}

// IsValidISBN 校验ISBN-10/ISBN-13（含校验位）
func IsValidISBN(isbn string) bool {
	isbn = NormalizeISBN(isbn)
	switch len(isbn) {
	case 10:
		sum := 0
		for i, c := range isbn {
			var d int
			switch {
			case c == 'X' && i == 9:
				d = 10
			case c >= '0' && c <= '9':
				d = int(c - '0')
			default:
				return false
			}
			sum += d * (10 - i)
		}
		return sum%11 == 0
	case 13:
		sum := 0
		for i, c := range isbn {
			if c < '0' || c > '9' {
				return false
			}
			d := int(c - '0')
			if i%2 == 1 {
				d *= 3
			}
			sum += d
		}
		return sum%10 == 0
	}
	return false
}
