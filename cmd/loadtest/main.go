package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	codeOK        = "200"
	codeTransport = "transport_error"

	defaultPrice = 10.0
)

type loadMode string

const (
	modeCustomers loadMode = "customers"
	modeOrders    loadMode = "orders"
	modeBulk      loadMode = "bulk"
)

type config struct {
	baseURL     string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	batchSize   int
	price       float64
	stock       int
	customerTag string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

func (c *collector) record(method string, latency time.Duration, code string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, found := c.methods[method]
	if !found {
		stats = &methodStats{
			codes: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if ok {
		stats.success++
	} else {
		stats.failed++
	}
	stats.codes[code]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) snapshot(name string) (methodReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[name]
	if !ok {
		return methodReport{}, false
	}

	codesCopy := make(map[string]int64, len(stats.codes))
	for code, count := range stats.codes {
		codesCopy[code] = count
	}

	return methodReport{
		Calls:     stats.calls,
		Success:   stats.success,
		Failed:    stats.failed,
		ErrorRate: ratio(stats.failed, stats.calls),
		Codes:     codesCopy,
		LatencyMs: buildLatencySummary(stats.latencies),
	}, true
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	scenarioStats := c.methods["scenario"]
	if scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		codesCopy := make(map[string]int64, len(stats.codes))
		for code, count := range stats.codes {
			codesCopy[code] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Codes:     codesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var timeoutValue string
	var durationValue string

	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "CRM API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m, 15m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modeCustomers), "load mode: customers | orders | bulk")
	flag.IntVar(&cfg.batchSize, "batch-size", 10, "customers per bulk request in bulk mode")
	flag.Float64Var(&cfg.price, "price", defaultPrice, "product price in major units")
	flag.IntVar(&cfg.stock, "stock", 100, "product stock for orders mode")
	flag.StringVar(&cfg.customerTag, "customer-tag", "load", "customer name/email prefix")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	if strings.TrimSpace(cfg.baseURL) == "" {
		return cfg, errors.New("base-url is required")
	}
	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.duration > 0 && cfg.totalSet && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.batchSize <= 0 {
		return cfg, errors.New("batch-size must be > 0")
	}
	if cfg.price <= 0 {
		return cfg, errors.New("price must be > 0")
	}
	if cfg.stock <= 0 {
		return cfg, errors.New("stock must be > 0")
	}
	if strings.TrimSpace(cfg.customerTag) == "" {
		return cfg, errors.New("customer-tag is required")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeCustomers:
		return modeCustomers, nil
	case modeOrders:
		return modeOrders, nil
	case modeBulk:
		return modeBulk, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// apiClient — тонкий HTTP-клиент поверх CRM REST API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type createdEntity struct {
	ID string `json:"id"`
}

func newAPIClient(cfg config) *apiClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.concurrency * 2,
		MaxIdleConnsPerHost: cfg.concurrency * 2,
	}
	return &apiClient{
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		httpClient: &http.Client{Transport: transport},
		timeout:    cfg.timeout,
	}
}

// post выполняет POST и возвращает конверт ответа и строковый код статуса.
func (c *apiClient) post(path string, body any) (apiEnvelope, string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return apiEnvelope{}, codeTransport, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return apiEnvelope{}, codeTransport, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiEnvelope{}, codeTransport, err
	}
	defer resp.Body.Close()

	code := strconv.Itoa(resp.StatusCode)

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apiEnvelope{}, code, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Success {
		return envelope, code, fmt.Errorf("request %s failed: status=%s message=%s", path, code, envelope.Message)
	}
	return envelope, code, nil
}

func (c *apiClient) createCustomer(name, email, phone string, col *collector) (string, string, error) {
	start := time.Now()
	envelope, code, err := c.post("/api/createCustomer", map[string]any{
		"name":  name,
		"email": email,
		"phone": phone,
	})
	col.record("createCustomer", time.Since(start), code, err == nil)
	if err != nil {
		return "", code, err
	}
	id, err := decodeID(envelope.Data)
	return id, code, err
}

func (c *apiClient) createProduct(name string, price float64, stock int, col *collector) (string, string, error) {
	start := time.Now()
	envelope, code, err := c.post("/api/createProduct", map[string]any{
		"name":  name,
		"price": price,
		"stock": stock,
	})
	col.record("createProduct", time.Since(start), code, err == nil)
	if err != nil {
		return "", code, err
	}
	id, err := decodeID(envelope.Data)
	return id, code, err
}

func (c *apiClient) createOrder(customerID string, productIDs []string, col *collector) (string, string, error) {
	start := time.Now()
	envelope, code, err := c.post("/api/createOrder", map[string]any{
		"customerId": customerID,
		"productIds": productIDs,
	})
	col.record("createOrder", time.Since(start), code, err == nil)
	if err != nil {
		return "", code, err
	}
	id, err := decodeID(envelope.Data)
	return id, code, err
}

func (c *apiClient) bulkCreateCustomers(customers []map[string]any, col *collector) (string, error) {
	start := time.Now()
	_, code, err := c.post("/api/bulkCreateCustomers", map[string]any{
		"customers": customers,
	})
	col.record("bulkCreateCustomers", time.Since(start), code, err == nil)
	return code, err
}

func decodeID(data json.RawMessage) (string, error) {
	var entity createdEntity
	if err := json.Unmarshal(data, &entity); err != nil {
		return "", fmt.Errorf("decode entity id: %w", err)
	}
	if entity.ID == "" {
		return "", errors.New("response returned empty entity id")
	}
	return entity.ID, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := newAPIClient(cfg)

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(client, cfg, id, runID, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

func runScenario(client *apiClient, cfg config, index int, runID string, col *collector) error {
	scenarioStart := time.Now()
	scenarioCode := codeOK
	scenarioErr := error(nil)
	defer func() {
		col.record("scenario", time.Since(scenarioStart), scenarioCode, scenarioErr == nil)
	}()

	switch cfg.mode {
	case modeBulk:
		customers := make([]map[string]any, 0, cfg.batchSize)
		for i := 0; i < cfg.batchSize; i++ {
			customers = append(customers, map[string]any{
				"name":  fmt.Sprintf("%s %d-%d", cfg.customerTag, index, i),
				"email": scenarioEmail(cfg.customerTag, runID, index*cfg.batchSize+i),
			})
		}
		code, err := client.bulkCreateCustomers(customers, col)
		if err != nil {
			scenarioCode, scenarioErr = code, err
		}
		return scenarioErr

	case modeOrders:
		customerID, code, err := client.createCustomer(
			fmt.Sprintf("%s %d", cfg.customerTag, index),
			scenarioEmail(cfg.customerTag, runID, index),
			"",
			col,
		)
		if err != nil {
			scenarioCode, scenarioErr = code, err
			return scenarioErr
		}

		productID, code, err := client.createProduct(
			fmt.Sprintf("%s-product-%s-%d", cfg.customerTag, runID, index),
			cfg.price,
			cfg.stock,
			col,
		)
		if err != nil {
			scenarioCode, scenarioErr = code, err
			return scenarioErr
		}

		if _, code, err = client.createOrder(customerID, []string{productID}, col); err != nil {
			scenarioCode, scenarioErr = code, err
		}
		return scenarioErr

	default:
		_, code, err := client.createCustomer(
			fmt.Sprintf("%s %d", cfg.customerTag, index),
			scenarioEmail(cfg.customerTag, runID, index),
			"",
			col,
		)
		if err != nil {
			scenarioCode, scenarioErr = code, err
		}
		return scenarioErr
	}
}

func scenarioEmail(tag, runID string, index int) string {
	return fmt.Sprintf("%s-%s-%d@loadtest.local", tag, runID, index)
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s run=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == "scenario" {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		fmt.Printf(
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
