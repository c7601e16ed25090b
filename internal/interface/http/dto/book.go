package dto

import "github.com/shopspring/decimal"

// BookForm 新增图书表单（multipart/form-data，封面字段名image）
type BookForm struct {
	ISBN            string `form:"isbn" binding:"required,max=20" example:"9787115428028"`
	Title           string `form:"title" binding:"required,max=200" example:"Go语言实战"`
	Author          string `form:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher       string `form:"publisher" binding:"required,max=100" example:"人民邮电出版社"`
	Genre           string `form:"genre" binding:"required,max=50" example:"计算机"`
	Language        string `form:"language" binding:"required,max=50" example:"中文"`
	Format          string `form:"format" binding:"required,max=50" example:"平装"`
	Description     string `form:"description" binding:"max=5000"`
	Price           int64  `form:"price" binding:"required,min=1" example:"5900"` // 分
	Stock           int    `form:"stock" binding:"min=0" example:"100"`
	PublicationDate string `form:"publicationDate" binding:"required" example:"2024-01-15"`
}

// BookPatchForm 修改图书表单，未提交的字段保持不变
type BookPatchForm struct {
	ISBN            *string `form:"isbn" binding:"omitempty,max=20"`
	Title           *string `form:"title" binding:"omitempty,max=200"`
	Author          *string `form:"author" binding:"omitempty,max=100"`
	Publisher       *string `form:"publisher" binding:"omitempty,max=100"`
	Genre           *string `form:"genre" binding:"omitempty,max=50"`
	Language        *string `form:"language" binding:"omitempty,max=50"`
	Format          *string `form:"format" binding:"omitempty,max=50"`
	Description     *string `form:"description" binding:"omitempty,max=5000"`
	Price           *int64  `form:"price" binding:"omitempty,min=1"`
	Stock           *int    `form:"stock" binding:"omitempty,min=0"`
	PublicationDate string  `form:"publicationDate"`
}

// DiscountRequest 设置折扣，discount为0表示取消
type DiscountRequest struct {
	Discount  decimal.Decimal `json:"discount" swaggertype:"number" example:"0.1"`
	StartDate string          `json:"startDate" example:"2024-06-01"`
	EndDate   string          `json:"endDate" example:"2024-06-30"`
}

// ListBooksQuery 图书检索参数
type ListBooksQuery struct {
	PageQuery
	Search    string `form:"search" binding:"max=100"`
	Author    string `form:"author"`
	Genre     string `form:"genre"`
	Publisher string `form:"publisher"`
	Language  string `form:"language"`
	Format    string `form:"format"`
	MinPrice  *int64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice  *int64 `form:"maxPrice" binding:"omitempty,min=0"`
	InStock   bool   `form:"inStock"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=title price publication_date popularity created_at"`
	SortDesc  bool   `form:"sortDesc"`
}
