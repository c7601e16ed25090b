package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOrder_CheckoutToPickup(t *testing.T) {
	requireServer(t)
	admin := AdminToken(t)
	clerk := CreateStaff(t, admin)
	_, reader := RegisterCustomer(t, "buyer")
	_, stranger := RegisterCustomer(t, "stranger")
	bookID := AddBook(t, admin, "取货流程图书", 4500, 10)

	t.Run("空购物车不能下单", func(t *testing.T) {
		res := Do(t, http.MethodPost, "/api/Order/checkout", stranger, nil)
		assert.Equal(t, http.StatusBadRequest, res.Status, res.Body)
	})

	ws := dialNotifications(t, reader)
	defer ws.Close()

	orderID, code := PlaceOrder(t, reader, bookID, 2)
	require.NotEmpty(t, code)

	t.Run("下单后购物车清空", func(t *testing.T) {
		res := Do(t, http.MethodGet, "/api/Cart", reader, nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, int64(0), res.Get("data.totalQuantity").Int())
	})

	t.Run("他人不可查看", func(t *testing.T) {
		res := Do(t, http.MethodGet, fmt.Sprintf("/api/Order/%d", orderID), stranger, nil)
		assert.Equal(t, http.StatusForbidden, res.Status)
	})

	t.Run("店员看不到取货码", func(t *testing.T) {
		res := Do(t, http.MethodGet, fmt.Sprintf("/api/Order/%d", orderID), clerk, nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.False(t, res.Get("data.claimCode").Exists())
		assert.Equal(t, int64(9000), res.Get("data.totalPrice").Int())
	})

	t.Run("错误取货码", func(t *testing.T) {
		res := Do(t, http.MethodPost, fmt.Sprintf("/api/Order/complete-order/%d", orderID), clerk, map[string]string{"claimCode": "ZZZZZZZZZZ"})
		assert.Equal(t, http.StatusBadRequest, res.Status, res.Body)
	})

	t.Run("完成取货并推送", func(t *testing.T) {
		res := Do(t, http.MethodPost, fmt.Sprintf("/api/Order/complete-order/%d", orderID), clerk, map[string]string{"claimCode": code})
		require.Equal(t, http.StatusOK, res.Status, res.Body)
		assert.Equal(t, "Completed", res.Get("data.status").String())

		msg := readEvent(t, ws, "ReceiveOrderCompletion")
		assert.Equal(t, int64(orderID), msg.Get("data.orderId").Int())
	})

	t.Run("已完成不可取消", func(t *testing.T) {
		res := Do(t, http.MethodPost, fmt.Sprintf("/api/Order/cancel-order/%d", orderID), reader, nil)
		assert.Equal(t, http.StatusBadRequest, res.Status)
	})

	t.Run("销量与评价", func(t *testing.T) {
		res := Do(t, http.MethodGet, fmt.Sprintf("/api/Book/%d", bookID), "", nil)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, int64(2), res.Get("data.soldCount").Int())

		res = Do(t, http.MethodPost, fmt.Sprintf("/api/Review/add/%d", bookID), reader, map[string]interface{}{"content": "排版清晰", "rating": 4})
		require.Equal(t, http.StatusCreated, res.Status, res.Body)

		res = Do(t, http.MethodPost, fmt.Sprintf("/api/Review/add/%d", bookID), stranger, map[string]interface{}{"content": "没买过", "rating": 1})
		assert.Equal(t, http.StatusForbidden, res.Status)

		res = Do(t, http.MethodGet, fmt.Sprintf("/api/Book/%d", bookID), "", nil)
		assert.InDelta(t, 4.0, res.Get("data.averageRating").Float(), 0.001)
	})
}

func TestOrder_Cancel(t *testing.T) {
	requireServer(t)
	admin := AdminToken(t)
	_, reader := RegisterCustomer(t, "canceller")
	bookID := AddBook(t, admin, "取消订单图书", 2000, 3)

	orderID, _ := PlaceOrder(t, reader, bookID, 1)

	res := Do(t, http.MethodPost, fmt.Sprintf("/api/Order/cancel-order/%d", orderID), reader, nil)
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	assert.Equal(t, "Cancelled", res.Get("data.status").String())

	res = Do(t, http.MethodPost, fmt.Sprintf("/api/Order/cancel-order/%d", orderID), reader, nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = Do(t, http.MethodGet, "/api/Order/user-orders", reader, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, int64(1), res.Get("data.totalCount").Int())
}

// TestOrder_ConcurrentCompletion 多个店员同时核销同一订单，只有一个成功
func TestOrder_ConcurrentCompletion(t *testing.T) {
	requireServer(t)
	admin := AdminToken(t)
	_, reader := RegisterCustomer(t, "race")
	bookID := AddBook(t, admin, "并发核销图书", 1000, 5)
	orderID, code := PlaceOrder(t, reader, bookID, 1)

	const workers = 5
	clerks := make([]string, workers)
	for i := range clerks {
		clerks[i] = CreateStaff(t, admin)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses []int
	)
	for _, clerk := range clerks {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			res := Do(t, http.MethodPost, fmt.Sprintf("/api/Order/complete-order/%d", orderID), token, map[string]string{"claimCode": code})
			mu.Lock()
			statuses = append(statuses, res.Status)
			mu.Unlock()
		}(clerk)
	}
	wg.Wait()

	ok := 0
	for _, s := range statuses {
		if s == http.StatusOK {
			ok++
		} else {
			assert.Contains(t, []int{http.StatusBadRequest, http.StatusConflict}, s)
		}
	}
	assert.Equal(t, 1, ok)

	res := Do(t, http.MethodGet, fmt.Sprintf("/api/Book/%d", bookID), "", nil)
	assert.Equal(t, int64(1), res.Get("data.soldCount").Int())
}

func TestAnnouncement_Push(t *testing.T) {
	requireServer(t)
	admin := AdminToken(t)

	ws := dialNotifications(t, "")
	defer ws.Close()

	desc := fmt.Sprintf("新书上架_%d", time.Now().UnixNano())
	now := time.Now()
	res := Do(t, http.MethodPost, "/api/Announcement", admin, map[string]string{
		"description": desc,
		"postedAt":    now.Add(-time.Second).Format(time.RFC3339),
		"expiryDate":  now.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	id := res.Get("data.id").Uint()

	msg := readEvent(t, ws, "ReceiveAnnouncement")
	assert.Equal(t, desc, msg.Get("data.description").String())

	res = Do(t, http.MethodGet, "/api/Announcement/active", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, desc)

	res = Do(t, http.MethodDelete, fmt.Sprintf("/api/Announcement/%d", id), admin, nil)
	require.Equal(t, http.StatusOK, res.Status)
}

func dialNotifications(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	u, err := url.Parse(serverURL())
	require.NoError(t, err)
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/hubs/notifications"
	if token != "" {
		u.RawQuery = url.Values{"access_token": {token}}.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err, "WebSocket连接失败")
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn
}

// readEvent 读取直到收到指定事件
func readEvent(t *testing.T, conn *websocket.Conn, event string) gjson.Result {
	t.Helper()

	deadline := time.Now().Add(timeout)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "等待%s超时", event)
		msg := gjson.ParseBytes(raw)
		if msg.Get("event").String() == event {
			return msg
		}
	}
}
