package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserModel GORM用户模型
// domain/user/entity.go是领域实体，不依赖GORM，Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"index;size:20;not null;default:Regular;comment:角色(Admin/Staff/Regular)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 1. 价格使用int64存储"分"
// 2. ISBN有唯一索引
// 3. 折扣使用decimal(4,3)，decimal.Decimal实现了Scanner/Valuer
type BookModel struct {
	ID                uint            `gorm:"primaryKey"`
	ISBN              string          `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title             string          `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author            string          `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher         string          `gorm:"index;size:100;not null;comment:出版社"`
	Genre             string          `gorm:"index;size:50;comment:分类"`
	Language          string          `gorm:"size:30;comment:语言"`
	Format            string          `gorm:"size:30;comment:装帧"`
	Description       string          `gorm:"type:text;comment:图书描述"`
	Price             int64           `gorm:"index:idx_list;not null;comment:价格(分)"`
	Stock             int             `gorm:"default:0;comment:库存数量"`
	CoverURL          string          `gorm:"size:500;comment:封面图片URL"`
	PublicationDate   time.Time       `gorm:"index;comment:出版日期"`
	Discount          decimal.Decimal `gorm:"type:decimal(4,3);default:0;comment:折扣比例"`
	DiscountStartDate *time.Time      `gorm:"comment:折扣开始时间"`
	DiscountEndDate   *time.Time      `gorm:"comment:折扣结束时间"`
	SoldCount         int             `gorm:"index;default:0;comment:销量"`
	CreatedAt         time.Time       `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt         time.Time       `gorm:"comment:更新时间"`
	DeletedAt         gorm.DeletedAt  `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// CartModel GORM购物车模型，每个用户一个
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex;not null;comment:用户ID"`
	Items     []CartItemModel `gorm:"foreignKey:CartID"`
	CreatedAt time.Time       `gorm:"comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel GORM购物车明细模型，(cart_id, book_id)唯一
type CartItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	CartID    uint      `gorm:"uniqueIndex:uk_cart_book;not null;comment:购物车ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_cart_book;not null;comment:图书ID"`
	Quantity  int       `gorm:"not null;default:1;comment:数量"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// OrderModel GORM订单模型
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. (status, created_at)组合索引用于按状态查询
type OrderModel struct {
	ID          uint             `gorm:"primaryKey"`
	OrderNo     string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID      uint             `gorm:"index;not null;comment:买家用户ID"`
	ClaimCode   string           `gorm:"size:16;not null;comment:取货码"`
	TotalPrice  int64            `gorm:"not null;comment:折后总金额(分)"`
	Discount    int64            `gorm:"not null;default:0;comment:优惠金额(分)"`
	Status      int              `gorm:"index:idx_status_created;type:smallint;default:1;comment:订单状态(1待确认2已取消3进行中4已完成)"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID"`
	CompletedAt *time.Time       `gorm:"comment:完成时间"`
	CreatedAt   time.Time        `gorm:"index:idx_status_created;comment:创建时间"`
	UpdatedAt   time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型，记录下单时的价格快照
type OrderItemModel struct {
	ID             uint            `gorm:"primaryKey"`
	OrderID        uint            `gorm:"index;not null;comment:订单ID"`
	BookID         uint            `gorm:"index;not null;comment:图书ID"`
	Title          string          `gorm:"size:200;comment:下单时书名"`
	Quantity       int             `gorm:"not null;comment:购买数量"`
	UnitPrice      int64           `gorm:"not null;comment:下单时单价(分)"`
	Discount       decimal.Decimal `gorm:"type:decimal(4,3);default:0;comment:下单时折扣"`
	FinalUnitPrice int64           `gorm:"not null;comment:下单时折后单价(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// BookmarkModel GORM收藏夹模型，每个用户一个
type BookmarkModel struct {
	ID        uint                `gorm:"primaryKey"`
	UserID    uint                `gorm:"uniqueIndex;not null;comment:用户ID"`
	Items     []BookmarkItemModel `gorm:"foreignKey:BookmarkID"`
	CreatedAt time.Time           `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (BookmarkModel) TableName() string {
	return "bookmarks"
}

// BookmarkItemModel GORM收藏明细模型，(bookmark_id, book_id)唯一
type BookmarkItemModel struct {
	ID         uint      `gorm:"primaryKey"`
	BookmarkID uint      `gorm:"uniqueIndex:uk_bookmark_book;not null;comment:收藏夹ID"`
	BookID     uint      `gorm:"uniqueIndex:uk_bookmark_book;not null;comment:图书ID"`
	CreatedAt  time.Time `gorm:"comment:收藏时间"`
}

// TableName 指定表名
func (BookmarkItemModel) TableName() string {
	return "bookmark_items"
}

// ReviewModel GORM书评模型，(user_id, book_id)唯一
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_user_book;not null;comment:用户ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_user_book;index;not null;comment:图书ID"`
	Content   string    `gorm:"type:text;comment:评价内容"`
	Rating    int       `gorm:"type:smallint;not null;comment:评分(1-5)"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}

// AnnouncementModel GORM公告模型
// (is_published, posted_at)组合索引供轮询查询待发布公告
type AnnouncementModel struct {
	ID          uint       `gorm:"primaryKey"`
	Description string     `gorm:"type:text;not null;comment:公告内容"`
	PostedAt    time.Time  `gorm:"index:idx_published_posted,priority:2;not null;comment:发布时间"`
	ExpiryDate  time.Time  `gorm:"index;not null;comment:过期时间"`
	IsPublished bool       `gorm:"index:idx_published_posted,priority:1;not null;default:false;comment:是否已发布"`
	PublishedAt *time.Time `gorm:"comment:实际发布时间"`
	CreatedBy   uint       `gorm:"not null;comment:创建人"`
	CreatedAt   time.Time  `gorm:"comment:创建时间"`
	UpdatedAt   time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AnnouncementModel) TableName() string {
	return "announcements"
}
