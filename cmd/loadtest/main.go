package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status   int
	Location string
	Err      error
}

func main() {
	baseURL := flag.String("base", "http://localhost:5000", "server base url")
	stock := flag.Int64("stock", 20, "initial stock of the test product")

	// 超卖测试参数：200 笔并发收银抢 20 件
	nSales := flag.Int("sales", 200, "concurrent sales")
	concurrency := flag.Int("c", 50, "max concurrency")
	loginAttempts := flag.Int("login-attempts", 30, "bad login attempts for rate limit test")
	flag.Parse()

	client, err := newClient()
	if err != nil {
		panic(err)
	}

	suffix := strconv.FormatInt(time.Now().UnixNano(), 36)
	username := "load" + suffix
	if err := registerAndLogin(client, *baseURL, username, "Loadtest1"); err != nil {
		panic(fmt.Sprintf("login failed: %v", err))
	}
	fmt.Println("login ok:", username)

	productName := "loadtest-" + suffix
	productID, err := addProduct(client, *baseURL, productName, *stock)
	if err != nil {
		panic(fmt.Sprintf("add product failed: %v", err))
	}
	fmt.Printf("product ok: id=%d stock=%d\n", productID, *stock)

	// 1) 不超卖测试：同一会话并发收银，每笔 1 件
	fmt.Printf("start oversell test: product=%d sales=%d concurrency=%d\n", productID, *nSales, *concurrency)
	results := runSales(client, *baseURL, productID, *nSales, *concurrency)
	accepted := printSummary("oversell", results)

	final, err := getStock(client, *baseURL, productID)
	if err != nil {
		fmt.Println("stock check err:", err)
	} else {
		fmt.Printf("final stock: %d (expected %d)\n", final, *stock-int64(accepted))
		if final < 0 || final != *stock-int64(accepted) {
			fmt.Println("OVERSELL DETECTED")
		}
	}

	// 2) 登录限流测试：错误密码连续登录，超过阈值应返回 429
	fmt.Printf("\nstart login rate limit test: %d attempts\n", *loginAttempts)
	fresh, err := newClient()
	if err != nil {
		panic(err)
	}
	results2 := runBadLogins(fresh, *baseURL, username, *loginAttempts)
	printSummary("login_rate_limit", results2)
}

// newClient 带 cookie jar、不自动跟随重定向，便于观察 303 的去向。
func newClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Timeout: 5 * time.Second,
		Jar:     jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

func registerAndLogin(client *http.Client, baseURL, username, password string) error {
	res := postForm(client, baseURL+"/register", url.Values{
		"username":         {username},
		"password":         {password},
		"confirm_password": {password},
		"fullname":         {"Load Test"},
		"position":         {"tester"},
		"email":            {username + "@loadtest.local"},
		"phone":            {"0000000000"},
	})
	if err := expectRedirect(res, "/login"); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	res = postForm(client, baseURL+"/login", url.Values{"username": {username}, "password": {password}})
	if err := expectRedirect(res, "/"); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func addProduct(client *http.Client, baseURL, name string, stock int64) (uint, error) {
	res := postForm(client, baseURL+"/product/add", url.Values{
		"name":     {name},
		"price":    {"9.99"},
		"stock":    {strconv.FormatInt(stock, 10)},
		"category": {"loadtest"},
	})
	if err := expectRedirect(res, "/products"); err != nil {
		return 0, err
	}

	products, err := listProducts(client, baseURL)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("product %q not in listing", name)
}

func runSales(client *http.Client, baseURL string, productID uint, total, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, total)

	form := url.Values{
		"product_id": {strconv.FormatUint(uint64(productID), 10)},
		"quantity":   {"1"},
	}
	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = postForm(client, baseURL+"/sale/add", form)
		}(i)
	}

	wg.Wait()
	return results
}

func runBadLogins(client *http.Client, baseURL, username string, total int) []Result {
	results := make([]Result, total)
	form := url.Values{"username": {username}, "password": {"wrong-password"}}
	for i := 0; i < total; i++ {
		results[i] = postForm(client, baseURL+"/login", form)
	}
	return results
}

func postForm(client *http.Client, target string, form url.Values) Result {
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return Result{Status: resp.StatusCode, Location: resp.Header.Get("Location")}
}

func expectRedirect(r Result, location string) error {
	if r.Err != nil {
		return r.Err
	}
	if r.Status != http.StatusSeeOther || r.Location != location {
		return fmt.Errorf("status=%d location=%q, want 303 -> %q", r.Status, r.Location, location)
	}
	return nil
}

// printSummary 聚合输出状态码与重定向去向，返回成交笔数。
func printSummary(name string, results []Result) int {
	count := map[string]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		key := strconv.Itoa(r.Status)
		if r.Location != "" {
			key += " -> " + r.Location
		}
		count[key]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for k, n := range count {
		fmt.Printf("  %s : %d\n", k, n)
	}
	if errCount > 0 {
		fmt.Printf("  errors : %d\n", errCount)
	}
	return count[strconv.Itoa(http.StatusSeeOther)+" -> /sales"]
}

type product struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

func listProducts(client *http.Client, baseURL string) ([]product, error) {
	resp, err := client.Get(baseURL + "/products")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		Code int `json:"code"`
		Data struct {
			Products []product `json:"products"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out.Data.Products, nil
}

// getStock 查询商品当前库存，用于压测后校验是否出现超卖。
func getStock(client *http.Client, baseURL string, productID uint) (int64, error) {
	products, err := listProducts(client, baseURL)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.ID == productID {
			return p.Stock, nil
		}
	}
	return 0, fmt.Errorf("product %d not found", productID)
}
