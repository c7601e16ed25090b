// Package integration 针对运行中的服务（真实MySQL与Redis）做端到端测试
//
// 运行方式：
//
//	go run ./cmd/api
//	go test -v ./test/integration/...
//
// 服务不可达时全部用例跳过。管理员账号取自config.yaml的admin配置，
// 可用BOOKSHOP_TEST_ADMIN_EMAIL / BOOKSHOP_TEST_ADMIN_PASSWORD覆盖。
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const timeout = 10 * time.Second

var (
	client  = &http.Client{Timeout: timeout}
	seq     atomic.Int64
	upOnce  sync.Once
	upError error
)

func serverURL() string {
	if v := os.Getenv("BOOKSHOP_TEST_BASE_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:8080"
}

func adminCredentials() (string, string) {
	email := os.Getenv("BOOKSHOP_TEST_ADMIN_EMAIL")
	if email == "" {
		email = "admin@bookshop.local"
	}
	password := os.Getenv("BOOKSHOP_TEST_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin12345"
	}
	return email, password
}

// requireServer 服务未启动时跳过当前测试
func requireServer(t *testing.T) {
	t.Helper()
	upOnce.Do(func() {
		resp, err := client.Get(serverURL() + "/ping")
		if err != nil {
			upError = err
			return
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			upError = fmt.Errorf("ping status %d", resp.StatusCode)
		}
	})
	if upError != nil {
		t.Skipf("服务不可达(%s): %v", serverURL(), upError)
	}
}

// Result 响应状态码与原始响应体，字段用gjson读取
type Result struct {
	Status int
	Body   string
}

// Get 读取gjson路径
func (r Result) Get(path string) gjson.Result {
	return gjson.Get(r.Body, path)
}

// Code 业务错误码
func (r Result) Code() int64 {
	return r.Get("code").Int()
}

func send(t *testing.T, req *http.Request, token string) Result {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")
	return Result{Status: resp.StatusCode, Body: string(body)}
}

// Do 发送JSON请求，body为nil时不带请求体
func Do(t *testing.T, method, path, token string, body interface{}) Result {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "JSON序列化失败")
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, serverURL()+path, reader)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	return send(t, req, token)
}

// UniqueEmail 生成不重复的测试邮箱
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@test.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// UniqueISBN 生成校验位正确且不重复的ISBN-13
func UniqueISBN() string {
	body := fmt.Sprintf("978%09d", (time.Now().UnixNano()/1000+seq.Add(1))%1000000000)
	sum := 0
	for i, ch := range body {
		d := int(ch - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return fmt.Sprintf("%s%d", body, (10-sum%10)%10)
}

// Login 登录并返回Access Token
func Login(t *testing.T, email, password string) string {
	t.Helper()
	res := Do(t, http.MethodPost, "/api/User/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, res.Status, "登录失败: %s", res.Body)
	token := res.Get("data.accessToken").String()
	require.NotEmpty(t, token)
	return token
}

// AdminToken 以初始管理员身份登录
func AdminToken(t *testing.T) string {
	t.Helper()
	email, password := adminCredentials()
	return Login(t, email, password)
}

// RegisterCustomer 注册顾客并登录，返回邮箱和Token
func RegisterCustomer(t *testing.T, prefix string) (string, string) {
	t.Helper()
	email := UniqueEmail(prefix)
	res := Do(t, http.MethodPost, "/api/User/register", "", map[string]string{
		"email": email, "password": "Test1234", "nickname": prefix,
	})
	require.Equal(t, http.StatusCreated, res.Status, "注册失败: %s", res.Body)
	return email, Login(t, email, "Test1234")
}

// CreateStaff 管理员创建店员并登录
func CreateStaff(t *testing.T, adminToken string) string {
	t.Helper()
	email := UniqueEmail("clerk")
	res := Do(t, http.MethodPost, "/api/User/admin/staff", adminToken, map[string]string{
		"email": email, "password": "Clerk1234", "nickname": "店员",
	})
	require.Equal(t, http.StatusCreated, res.Status, "创建店员失败: %s", res.Body)
	return Login(t, email, "Clerk1234")
}

// AddBook 以multipart表单上架图书，返回图书ID
func AddBook(t *testing.T, adminToken, title string, price, stock int) uint {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"isbn":            UniqueISBN(),
		"title":           title,
		"author":          "测试作者",
		"publisher":       "测试出版社",
		"genre":           "计算机",
		"language":        "中文",
		"format":          "平装",
		"description":     "集成测试用图书",
		"price":           fmt.Sprint(price),
		"stock":           fmt.Sprint(stock),
		"publicationDate": "2021-06-01",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG integration"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, serverURL()+"/api/Book/addBook", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res := send(t, req, adminToken)
	require.Equal(t, http.StatusCreated, res.Status, "上架失败: %s", res.Body)
	return uint(res.Get("data.id").Uint())
}

// PlaceOrder 加购、下单并确认，返回订单ID与取货码
func PlaceOrder(t *testing.T, token string, bookID uint, quantity int) (uint, string) {
	t.Helper()

	res := Do(t, http.MethodPost, fmt.Sprintf("/api/Cart/add-to-cart/%d", bookID), token, nil)
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	if quantity > 1 {
		res = Do(t, http.MethodPut, fmt.Sprintf("/api/Cart/update/%d", bookID), token, map[string]int{"quantity": quantity})
		require.Equal(t, http.StatusOK, res.Status, res.Body)
	}

	res = Do(t, http.MethodPost, "/api/Order/checkout", token, nil)
	require.Equal(t, http.StatusCreated, res.Status, "下单失败: %s", res.Body)
	orderID := uint(res.Get("data.id").Uint())
	code := res.Get("data.claimCode").String()

	res = Do(t, http.MethodPost, fmt.Sprintf("/api/Order/confirm-order/%d", orderID), token, nil)
	require.Equal(t, http.StatusOK, res.Status, "确认失败: %s", res.Body)
	return orderID, code
}
