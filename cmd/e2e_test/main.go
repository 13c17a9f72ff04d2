package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// e2e_test drives a running server through a full account lifecycle.
// Set E2E_BASE_URL to target something other than localhost:8080; the server must run
// with PAYMENT_MOCK_MODE=true for the top-up step.
func main() {
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := &client{base: baseURL, http: &http.Client{Timeout: 10 * time.Second}}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health
	c.call("GET", "/health", nil, 200)
	c.call("GET", "/health/db", nil, 200)

	// 2. Register and login
	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	c.call("POST", "/auth/register", map[string]any{"name": "E2E User", "email": email, "password": "secret123"}, 201)
	login := c.call("POST", "/auth/login", map[string]any{"email": email, "password": "secret123"}, 200)
	c.token, _ = login["token"].(string)

	// 3. Anonymous requests are refused
	token := c.token
	c.token = ""
	c.call("GET", "/wallet", nil, 401)
	c.token = token

	// 4. Wallet
	c.call("GET", "/wallet", nil, 200)
	c.call("POST", "/wallet?action=deposit", map[string]any{"amount": 250}, 200)
	c.call("POST", "/wallet?action=withdraw", map[string]any{"amount": 50}, 200)

	// 5. Market data
	c.call("GET", "/stocks?sortBy=price", nil, 200)
	c.call("GET", "/stocks/TCS", nil, 200)
	c.call("GET", "/stocks/TCS/chart?period=1W", nil, 200)
	c.call("GET", "/market/trending?category=gainers", nil, 200)

	// 6. Trade
	c.call("POST", "/portfolio?action=buy", map[string]any{"symbol": "ITC", "quantity": 2}, 200)
	c.call("GET", "/portfolio", nil, 200)
	c.call("POST", "/portfolio?action=sell", map[string]any{"symbol": "ITC", "quantity": 1}, 200)
	c.call("POST", "/portfolio?action=sell", map[string]any{"symbol": "ITC", "quantity": 5}, 400)
	c.call("GET", "/transactions?page=1&limit=10", nil, 200)

	// 7. Watchlist
	c.call("POST", "/watchlist", map[string]any{"symbol": "INFY"}, 200)
	c.call("POST", "/watchlist", map[string]any{"symbol": "INFY"}, 409)
	c.call("DELETE", "/watchlist/INFY", nil, 200)

	// 8. Mock top-up
	order := c.call("POST", "/payment?action=create-order", map[string]any{"amount": 100}, 200)
	c.call("POST", "/payment?action=verify", map[string]any{
		"razorpay_order_id":   order["orderId"],
		"razorpay_payment_id": "pay_e2e",
	}, 200)

	// 9. Dashboard
	c.call("GET", "/dashboard?type=stats", nil, 200)

	fmt.Println("ALL TESTS PASSED")
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) call(method, path string, body any, expectedStatus int) map[string]any {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, c.base+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))

	var out map[string]any
	_ = json.Unmarshal(respBody, &out)
	return out
}
