// Package apptest 用例测试使用的内存实现
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/announcement"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/bookmark"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
)

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// UserRepo 内存用户仓储
type UserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*user.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[uint]*user.User{}}
}

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepo) List(_ context.Context, p user.ListParams) ([]*user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*user.User
	for _, u := range r.users {
		if p.Role == "" || u.Role == p.Role {
			cp := *u
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, p.Page, p.PageSize), int64(len(all)), nil
}

// BookRepo 内存图书仓储
type BookRepo struct {
	mu      sync.Mutex
	nextID  uint
	books   map[uint]*book.Book
	Ratings map[uint]float64 // bestSellers排序依据
}

func NewBookRepo() *BookRepo {
	return &BookRepo{books: map[uint]*book.Book{}, Ratings: map[uint]float64{}}
}

// Seed 直接写入（跳过校验）
func (r *BookRepo) Seed(b *book.Book) *book.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().Add(time.Duration(b.ID) * time.Millisecond)
	}
	cp := *b
	r.books[b.ID] = &cp
	return b
}

// Get 读取当前状态（测试断言用）
func (r *BookRepo) Get(id uint) *book.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books[id]; ok {
		cp := *b
		return &cp
	}
	return nil
}

func (r *BookRepo) Create(_ context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.books {
		if existing.ISBN == b.ISBN {
			return book.ErrISBNDuplicate
		}
	}
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *BookRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	if b := r.Get(id); b != nil {
		return b, nil
	}
	return nil, book.ErrBookNotFound
}

func (r *BookRepo) FindByIDs(_ context.Context, ids []uint) ([]*book.Book, error) {
	out := []*book.Book{}
	for _, id := range ids {
		if b := r.Get(id); b != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookRepo) FindByISBN(_ context.Context, isbn string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *BookRepo) Update(_ context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *BookRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *BookRepo) all() []*book.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*book.Book, 0, len(r.books))
	for _, b := range r.books {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *BookRepo) List(_ context.Context, p book.ListParams) ([]*book.Book, int64, error) {
	p.Normalize()
	var matched []*book.Book
	for _, b := range r.all() {
		if p.Search != "" && !containsAny(p.Search, b.Title, b.Author, b.ISBN, b.Description) {
			continue
		}
		if (p.Author != "" && b.Author != p.Author) || (p.Genre != "" && b.Genre != p.Genre) ||
			(p.Publisher != "" && b.Publisher != p.Publisher) || (p.Language != "" && b.Language != p.Language) ||
			(p.Format != "" && b.Format != p.Format) {
			continue
		}
		if (p.MinPrice != nil && b.Price < *p.MinPrice) || (p.MaxPrice != nil && b.Price > *p.MaxPrice) {
			continue
		}
		if p.InStock && b.Stock <= 0 {
			continue
		}
		matched = append(matched, b)
	}

	less := func(a, b *book.Book) bool {
		switch p.SortBy {
		case book.SortByTitle:
			return a.Title < b.Title
		case book.SortByPrice:
			return a.Price < b.Price
		case book.SortByPublicationDate:
			return a.PublicationDate.Before(b.PublicationDate)
		case book.SortByPopularity:
			return a.SoldCount < b.SoldCount
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if p.SortDesc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})
	return paginate(matched, p.Page, p.PageSize), int64(len(matched)), nil
}

func containsAny(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func (r *BookRepo) Facets(_ context.Context) (*book.Facets, error) {
	f := &book.Facets{}
	seen := map[string]bool{}
	add := func(dst *[]string, kind, v string) {
		if v != "" && !seen[kind+v] {
			seen[kind+v] = true
			*dst = append(*dst, v)
		}
	}
	for i, b := range r.all() {
		add(&f.Authors, "a", b.Author)
		add(&f.Genres, "g", b.Genre)
		add(&f.Publishers, "p", b.Publisher)
		add(&f.Languages, "l", b.Language)
		add(&f.Formats, "f", b.Format)
		if i == 0 || b.Price < f.MinPrice {
			f.MinPrice = b.Price
		}
		if b.Price > f.MaxPrice {
			f.MaxPrice = b.Price
		}
	}
	for _, s := range [][]string{f.Authors, f.Genres, f.Publishers, f.Languages, f.Formats} {
		sort.Strings(s)
	}
	return f, nil
}

func (r *BookRepo) Featured(_ context.Context, kind book.FeaturedKind, now time.Time, limit int) ([]*book.Book, error) {
	var list []*book.Book
	for _, b := range r.all() {
		switch kind {
		case book.FeaturedNewReleases:
			if b.IsReleased(now) {
				list = append(list, b)
			}
		case book.FeaturedComingSoon:
			if !b.IsReleased(now) {
				list = append(list, b)
			}
		case book.FeaturedTopSales:
			if b.SoldCount > 0 {
				list = append(list, b)
			}
		case book.FeaturedBestSellers:
			if _, ok := r.Ratings[b.ID]; ok {
				list = append(list, b)
			}
		default:
			list = append(list, b)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch kind {
		case book.FeaturedNewReleases:
			return a.PublicationDate.After(b.PublicationDate)
		case book.FeaturedComingSoon:
			return a.PublicationDate.Before(b.PublicationDate)
		case book.FeaturedTopSales:
			return a.SoldCount > b.SoldCount
		case book.FeaturedBestSellers:
			return r.Ratings[a.ID] > r.Ratings[b.ID]
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *BookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *BookRepo) UpdateStock(_ context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

func (r *BookRepo) IncrSoldCount(_ context.Context, id uint, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books[id]; ok {
		b.SoldCount += quantity
	}
	return nil
}

// CartRepo 内存购物车仓储
type CartRepo struct {
	mu     sync.Mutex
	nextID uint
	carts  map[uint]*cart.Cart // key: userID
}

func NewCartRepo() *CartRepo {
	return &CartRepo{carts: map[uint]*cart.Cart{}}
}

func (r *CartRepo) byID(cartID uint) *cart.Cart {
	for _, c := range r.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (r *CartRepo) FindByUserID(_ context.Context, userID uint) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp, nil
}

func (r *CartRepo) Create(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.carts[c.UserID]; ok {
		c.ID = existing.ID
		return nil
	}
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.carts[c.UserID] = &cp
	return nil
}

func (r *CartRepo) AddItem(_ context.Context, item *cart.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byID(item.CartID)
	if c == nil {
		return cart.ErrCartNotFound
	}
	if _, ok := c.FindItem(item.BookID); ok {
		return cart.ErrItemExists
	}
	r.nextID++
	item.ID = r.nextID
	c.Items = append(c.Items, *item)
	return nil
}

func (r *CartRepo) UpdateItemQuantity(_ context.Context, cartID, bookID uint, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byID(cartID)
	if c == nil {
		return cart.ErrItemNotFound
	}
	item, ok := c.FindItem(bookID)
	if !ok {
		return cart.ErrItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *CartRepo) RemoveItem(_ context.Context, cartID, bookID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byID(cartID)
	if c == nil {
		return cart.ErrItemNotFound
	}
	for i, item := range c.Items {
		if item.BookID == bookID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (r *CartRepo) ClearItems(_ context.Context, cartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.byID(cartID); c != nil {
		c.Items = nil
	}
	return nil
}

// OrderRepo 内存订单仓储
type OrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*order.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: map[uint]*order.Order{}}
}

// Count 订单总数
func (r *OrderRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *OrderRepo) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	for i := range o.Items {
		o.Items[i].ID = uint(i + 1)
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

func (r *OrderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	return &cp, nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id uint, from, to order.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return order.ErrConcurrentUpdate
	}
	o.Status = to
	o.UpdatedAt = at
	if to == order.StatusCompleted {
		o.CompletedAt = &at
	}
	return nil
}

func (r *OrderRepo) List(_ context.Context, p order.ListParams) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*order.Order
	for _, o := range r.orders {
		if (p.UserID != 0 && o.UserID != p.UserID) || (p.Status != 0 && o.Status != p.Status) {
			continue
		}
		cp := *o
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, p.Page, p.PageSize), int64(len(all)), nil
}

func (r *OrderRepo) HasCompletedOrderWithBook(_ context.Context, userID, bookID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.Status == order.StatusCompleted && o.ContainsBook(bookID) {
			return true, nil
		}
	}
	return false, nil
}

// BookmarkRepo 内存收藏夹仓储
type BookmarkRepo struct {
	mu        sync.Mutex
	nextID    uint
	bookmarks map[uint]*bookmark.Bookmark // key: userID
}

func NewBookmarkRepo() *BookmarkRepo {
	return &BookmarkRepo{bookmarks: map[uint]*bookmark.Bookmark{}}
}

func (r *BookmarkRepo) byID(id uint) *bookmark.Bookmark {
	for _, b := range r.bookmarks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (r *BookmarkRepo) FindByUserID(_ context.Context, userID uint) (*bookmark.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookmarks[userID]
	if !ok {
		return nil, bookmark.ErrBookmarkNotFound
	}
	cp := *b
	cp.Items = append([]bookmark.Item(nil), b.Items...)
	return &cp, nil
}

func (r *BookmarkRepo) Create(_ context.Context, b *bookmark.Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.bookmarks[b.UserID]; ok {
		b.ID = existing.ID
		return nil
	}
	r.nextID++
	b.ID = r.nextID
	cp := *b
	r.bookmarks[b.UserID] = &cp
	return nil
}

func (r *BookmarkRepo) AddItem(_ context.Context, item *bookmark.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.byID(item.BookmarkID)
	if b == nil {
		return bookmark.ErrBookmarkNotFound
	}
	if b.Contains(item.BookID) {
		return nil
	}
	r.nextID++
	item.ID = r.nextID
	b.Items = append([]bookmark.Item{*item}, b.Items...)
	return nil
}

func (r *BookmarkRepo) RemoveItem(_ context.Context, bookmarkID, bookID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.byID(bookmarkID)
	if b == nil {
		return bookmark.ErrItemNotFound
	}
	for i, item := range b.Items {
		if item.BookID == bookID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			return nil
		}
	}
	return bookmark.ErrItemNotFound
}

// ReviewRepo 内存书评仓储
type ReviewRepo struct {
	mu      sync.Mutex
	nextID  uint
	reviews []*review.Review
}

func NewReviewRepo() *ReviewRepo {
	return &ReviewRepo{}
}

func (r *ReviewRepo) Create(_ context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.UserID == rv.UserID && existing.BookID == rv.BookID {
			return review.ErrAlreadyReviewed
		}
	}
	r.nextID++
	rv.ID = r.nextID
	cp := *rv
	r.reviews = append(r.reviews, &cp)
	return nil
}

func (r *ReviewRepo) Exists(_ context.Context, userID, bookID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReviewRepo) ListByBook(_ context.Context, bookID uint, page, pageSize int) ([]*review.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*review.Review
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].BookID == bookID {
			cp := *r.reviews[i]
			list = append(list, &cp)
		}
	}
	return paginate(list, page, pageSize), int64(len(list)), nil
}

func (r *ReviewRepo) Summary(_ context.Context, bookID uint) (*review.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &review.Summary{BookID: bookID}
	sum := 0
	for _, rv := range r.reviews {
		if rv.BookID == bookID {
			s.Count++
			sum += rv.Rating
		}
	}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s, nil
}

// AnnouncementRepo 内存公告仓储
type AnnouncementRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*announcement.Announcement
}

func NewAnnouncementRepo() *AnnouncementRepo {
	return &AnnouncementRepo{items: map[uint]*announcement.Announcement{}}
}

// Get 读取当前状态（测试断言用）
func (r *AnnouncementRepo) Get(id uint) *announcement.Announcement {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.items[id]; ok {
		cp := *a
		return &cp
	}
	return nil
}

func (r *AnnouncementRepo) Create(_ context.Context, a *announcement.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *AnnouncementRepo) FindByID(_ context.Context, id uint) (*announcement.Announcement, error) {
	if a := r.Get(id); a != nil {
		return a, nil
	}
	return nil, announcement.ErrAnnouncementNotFound
}

func (r *AnnouncementRepo) Update(_ context.Context, a *announcement.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[a.ID]
	if !ok {
		return announcement.ErrAnnouncementNotFound
	}
	existing.Description = a.Description
	existing.PostedAt = a.PostedAt
	existing.ExpiryDate = a.ExpiryDate
	existing.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *AnnouncementRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return announcement.ErrAnnouncementNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *AnnouncementRepo) sorted(filter func(*announcement.Announcement) bool, asc bool) []*announcement.Announcement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*announcement.Announcement
	for _, a := range r.items {
		if filter(a) {
			cp := *a
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if asc {
			return list[i].PostedAt.Before(list[j].PostedAt)
		}
		return list[i].PostedAt.After(list[j].PostedAt)
	})
	return list
}

func (r *AnnouncementRepo) List(_ context.Context, page, pageSize int) ([]*announcement.Announcement, int64, error) {
	all := r.sorted(func(*announcement.Announcement) bool { return true }, false)
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r *AnnouncementRepo) ListActive(_ context.Context, now time.Time) ([]*announcement.Announcement, error) {
	return r.sorted(func(a *announcement.Announcement) bool { return a.IsActive(now) }, false), nil
}

func (r *AnnouncementRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*announcement.Announcement, error) {
	list := r.sorted(func(a *announcement.Announcement) bool { return a.IsDue(now) }, true)
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *AnnouncementRepo) MarkPublished(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.IsPublished {
		return announcement.ErrAlreadyPublished
	}
	a.MarkPublished(at)
	return nil
}

func (r *AnnouncementRepo) UnmarkPublished(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.items[id]; ok {
		a.Unpublish()
	}
	return nil
}
