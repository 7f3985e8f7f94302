package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"event_marketplace/internal/pkg/config"
	"event_marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server address")
	users := flag.Int("users", 2000, "concurrent users")
	seats := flag.Int("seats", 5, "event capacity")
	coupon := flag.String("coupon", "", "coupon code applied to every booking")
	flag.Parse()

	// 令牌用与服务端相同的密钥签发
	_ = godotenv.Load()
	if _, err := config.LoadConfig(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 1. 主办方创建活动
	eventID, err := createEvent(*baseURL, *seats)
	if err != nil {
		log.Fatalf("创建活动失败: %v", err)
	}

	fmt.Printf("开始压测：模拟 %d 个用户抢 %d 个座位 (EventID: %s)...\n", *users, *seats, eventID)
	time.Sleep(1 * time.Second)

	// 2. 并发下单
	tokens := make([]string, *users)
	for i := range tokens {
		token, _, err := utils.GenerateToken(uuid.NewString(), utils.RoleUser)
		if err != nil {
			log.Fatal(err)
		}
		tokens[i] = token
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := make(map[int]int)
	start := time.Now()

	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status := book(*baseURL, token, eventID, *coupon)
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}(token)
	}

	wg.Wait()
	duration := time.Since(start)
	qps := float64(*users) / duration.Seconds()

	final, _ := eventStatus(*baseURL, eventID)

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", *users)
	fmt.Printf("QPS: %.2f\n", qps)
	fmt.Printf("下单成功: %d (预期: %d)\n", statuses[http.StatusCreated], *seats)
	fmt.Printf("座位不足: %d\n", statuses[http.StatusConflict])
	fmt.Printf("其他状态: %v\n", statuses)
	fmt.Printf("活动状态: %s (预期: FULL)\n", final)
	fmt.Println("--------------------------------------------------")
}

func createEvent(baseURL string, seats int) (string, error) {
	token, _, err := utils.GenerateToken(uuid.NewString(), utils.RoleHost)
	if err != nil {
		return "", err
	}
	payload := map[string]interface{}{
		"name":            "压测专场",
		"maxParticipants": seats,
		"joiningFee":      "100",
		"date":            time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	var event struct {
		ID string `json:"id"`
	}
	if err := call(http.MethodPost, baseURL+"/events", token, payload, &event); err != nil {
		return "", err
	}
	return event.ID, nil
}

func book(baseURL, token, eventID, coupon string) int {
	payload := map[string]interface{}{"eventId": eventID, "quantity": 1}
	if coupon != "" {
		payload["couponCode"] = coupon
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func eventStatus(baseURL, eventID string) (string, error) {
	var event struct {
		Status string `json:"status"`
	}
	if err := call(http.MethodGet, baseURL+"/events/"+eventID, "", nil, &event); err != nil {
		return "", err
	}
	return event.Status, nil
}

func call(method, url, token string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode %s: %w", respBody, err)
	}
	if env.Code != 0 {
		return fmt.Errorf("%s %s: %s", method, url, respBody)
	}
	return json.Unmarshal(env.Data, out)
}
