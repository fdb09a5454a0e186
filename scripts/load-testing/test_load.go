package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type LoadTestConfig struct {
	BaseURL             string
	ConcurrentUsers     int
	TestDurationSeconds int
	RampUpSeconds       int
	VoucherID           uint64
	Stock               int
}

type TestResult struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	AdmittedOrders     int64
	SoldOutRejections  int64
	DuplicateRejects   int64
	ResponseTimes      []time.Duration
	mutex              sync.Mutex
}

type PerformanceMetrics struct {
	StartTime          time.Time
	EndTime            time.Time
	TotalDuration      time.Duration
	ThroughputRPS      float64
	AdmittedOrders     int64
	SoldOutRejections  int64
	DuplicateRejects   int64
	P50ResponseTime    time.Duration
	P95ResponseTime    time.Duration
	P99ResponseTime    time.Duration
	ErrorRate          float64
	AdmissionRate      float64
}

type LoadTester struct {
	config *LoadTestConfig
	result *TestResult
	client *http.Client
}

func NewLoadTester(config *LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		result: &TestResult{},
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        200,
				MaxIdleConnsPerHost: 200,
			},
		},
	}
}

// initializeSale creates the voucher the test hammers. A 409 on a rerun means
// the voucher already exists, which is fine for repeated test runs.
func (lt *LoadTester) initializeSale() error {
	payload := map[string]interface{}{
		"voucher_id": lt.config.VoucherID,
		"stock":      lt.config.Stock,
		"begin_time": time.Now().Add(-time.Minute).Format(time.RFC3339),
		"end_time":   time.Now().Add(time.Hour).Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := lt.client.Post(lt.config.BaseURL+"/admin/vouchers", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("initialize sale returned status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (lt *LoadTester) simulateUser(ctx context.Context, userID int, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			lt.attemptPurchase(userID)
			time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)
		}
	}
}

func (lt *LoadTester) attemptPurchase(userID int) {
	start := time.Now()
	url := fmt.Sprintf("%s/seckill?voucher_id=%d", lt.config.BaseURL, lt.config.VoucherID)

	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		atomic.AddInt64(&lt.result.FailedRequests, 1)
		return
	}
	req.Header.Set("X-User-ID", strconv.Itoa(userID+1))

	resp, err := lt.client.Do(req)
	duration := time.Since(start)

	atomic.AddInt64(&lt.result.TotalRequests, 1)

	// Sold out and duplicate are correct behavior under contention, not
	// failures of the system under test.
	if err != nil {
		atomic.AddInt64(&lt.result.FailedRequests, 1)
	} else {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			atomic.AddInt64(&lt.result.SuccessfulRequests, 1)
			atomic.AddInt64(&lt.result.AdmittedOrders, 1)
		case http.StatusConflict:
			atomic.AddInt64(&lt.result.SuccessfulRequests, 1)
			lt.classifyConflict()
		default:
			atomic.AddInt64(&lt.result.FailedRequests, 1)
		}
	}

	lt.result.mutex.Lock()
	lt.result.ResponseTimes = append(lt.result.ResponseTimes, duration)
	lt.result.mutex.Unlock()
}

func (lt *LoadTester) classifyConflict() {
	// A user that already got an order sees DUPLICATE on every retry; a user
	// that never got one sees OUT_OF_STOCK once the counter hits zero. The
	// split is approximated from admitted counts rather than parsing bodies
	// on the hot path.
	if atomic.LoadInt64(&lt.result.AdmittedOrders) >= int64(lt.config.Stock) {
		atomic.AddInt64(&lt.result.SoldOutRejections, 1)
	} else {
		atomic.AddInt64(&lt.result.DuplicateRejects, 1)
	}
}

func (lt *LoadTester) Run() *PerformanceMetrics {
	fmt.Printf("Starting load test with %d concurrent users for %d seconds\n",
		lt.config.ConcurrentUsers, lt.config.TestDurationSeconds)

	if err := lt.initializeSale(); err != nil {
		fmt.Printf("Warning: sale initialization failed: %v\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(lt.config.TestDurationSeconds)*time.Second)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, stopping test...")
		cancel()
	}()

	startTime := time.Now()
	var wg sync.WaitGroup

	userInterval := time.Duration(lt.config.RampUpSeconds) * time.Second / time.Duration(lt.config.ConcurrentUsers)

	for i := 0; i < lt.config.ConcurrentUsers; i++ {
		wg.Add(1)
		go lt.simulateUser(ctx, i, &wg)

		if i < lt.config.ConcurrentUsers-1 {
			time.Sleep(userInterval)
		}
	}

	go lt.monitorProgress(ctx, startTime)

	wg.Wait()
	endTime := time.Now()

	return lt.calculateMetrics(startTime, endTime)
}

func (lt *LoadTester) monitorProgress(ctx context.Context, startTime time.Time) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(startTime)
			totalReqs := atomic.LoadInt64(&lt.result.TotalRequests)
			admitted := atomic.LoadInt64(&lt.result.AdmittedOrders)

			currentRPS := float64(totalReqs) / elapsed.Seconds()

			fmt.Printf("[%s] Total: %d, Admitted: %d, RPS: %.1f\n",
				elapsed.Round(time.Second), totalReqs, admitted, currentRPS)
		}
	}
}

func (lt *LoadTester) calculateMetrics(startTime, endTime time.Time) *PerformanceMetrics {
	lt.result.mutex.Lock()
	defer lt.result.mutex.Unlock()

	totalDuration := endTime.Sub(startTime)
	totalRequests := atomic.LoadInt64(&lt.result.TotalRequests)

	metrics := &PerformanceMetrics{
		StartTime:         startTime,
		EndTime:           endTime,
		TotalDuration:     totalDuration,
		AdmittedOrders:    atomic.LoadInt64(&lt.result.AdmittedOrders),
		SoldOutRejections: atomic.LoadInt64(&lt.result.SoldOutRejections),
		DuplicateRejects:  atomic.LoadInt64(&lt.result.DuplicateRejects),
	}

	if totalDuration.Seconds() > 0 {
		metrics.ThroughputRPS = float64(totalRequests) / totalDuration.Seconds()
	}

	if totalRequests > 0 {
		metrics.ErrorRate = float64(atomic.LoadInt64(&lt.result.FailedRequests)) / float64(totalRequests) * 100
		metrics.AdmissionRate = float64(metrics.AdmittedOrders) / float64(totalRequests) * 100
	}

	if len(lt.result.ResponseTimes) > 0 {
		metrics.P50ResponseTime = calculatePercentile(lt.result.ResponseTimes, 50)
		metrics.P95ResponseTime = calculatePercentile(lt.result.ResponseTimes, 95)
		metrics.P99ResponseTime = calculatePercentile(lt.result.ResponseTimes, 99)
	}

	return metrics
}

func calculatePercentile(durations []time.Duration, percentile int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	index := int(float64(len(sorted)) * float64(percentile) / 100.0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	if index < 0 {
		index = 0
	}

	return sorted[index]
}

func (pm *PerformanceMetrics) PrintReport() {
	fmt.Printf("PERFORMANCE TEST RESULTS\n")
	fmt.Printf("Test Duration: %v\n", pm.TotalDuration.Round(time.Second))
	fmt.Printf("Start Time: %s\n", pm.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Printf("End Time: %s\n", pm.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Printf("\n")

	fmt.Printf("THROUGHPUT METRICS:\n")
	fmt.Printf("- Total RPS: %.2f requests/second\n", pm.ThroughputRPS)
	fmt.Printf("- Error Rate: %.2f%%\n", pm.ErrorRate)
	fmt.Printf("\n")

	fmt.Printf("RESPONSE TIME METRICS:\n")
	fmt.Printf("- P50 Response Time: %v\n", pm.P50ResponseTime.Round(time.Millisecond))
	fmt.Printf("- P95 Response Time: %v\n", pm.P95ResponseTime.Round(time.Millisecond))
	fmt.Printf("- P99 Response Time: %v\n", pm.P99ResponseTime.Round(time.Millisecond))
	fmt.Printf("\n")

	fmt.Printf("BUSINESS METRICS:\n")
	fmt.Printf("- Admitted Orders: %d\n", pm.AdmittedOrders)
	fmt.Printf("- Sold-Out Rejections: %d\n", pm.SoldOutRejections)
	fmt.Printf("- Duplicate Rejections: %d\n", pm.DuplicateRejects)
	fmt.Printf("- Admission Rate: %.2f%%\n", pm.AdmissionRate)
	fmt.Printf("\n")
}

func (pm *PerformanceMetrics) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

func main() {
	config := &LoadTestConfig{
		BaseURL:             "http://localhost:8080",
		ConcurrentUsers:     100,
		TestDurationSeconds: 60,
		RampUpSeconds:       10,
		VoucherID:           uint64(time.Now().Unix()),
		Stock:               100,
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "light":
			config.ConcurrentUsers = 50
			config.TestDurationSeconds = 30
		case "heavy":
			config.ConcurrentUsers = 500
			config.TestDurationSeconds = 300
			config.Stock = 1000
		case "stress":
			config.ConcurrentUsers = 1000
			config.TestDurationSeconds = 600
			config.Stock = 2000
		}
	}

	if base := os.Getenv("BASE_URL"); base != "" {
		config.BaseURL = base
	}

	loadTester := NewLoadTester(config)

	fmt.Printf("Configuration:\n")
	fmt.Printf("- Base URL: %s\n", config.BaseURL)
	fmt.Printf("- Concurrent Users: %d\n", config.ConcurrentUsers)
	fmt.Printf("- Test Duration: %d seconds\n", config.TestDurationSeconds)
	fmt.Printf("- Ramp Up: %d seconds\n", config.RampUpSeconds)
	fmt.Printf("- Voucher: %d with stock %d\n", config.VoucherID, config.Stock)
	fmt.Printf("\nStarting test...\n\n")

	metrics := loadTester.Run()

	metrics.PrintReport()

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("load_test_results_%s.json", timestamp)
	if err := metrics.SaveToFile(filename); err != nil {
		fmt.Printf("Failed to save results to file: %v\n", err)
	} else {
		fmt.Printf("Results saved to: %s\n", filename)
	}
}
