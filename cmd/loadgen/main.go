// Command loadgen drives a Zipf-distributed mix of bbox item listings and
// single-zone lookups against a running API and records per-request latency.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL         string
	Collection      string
	Resolution      int
	Accept          string
	Concurrency     int
	Duration        time.Duration
	ZipfS           float64
	ZipfV           float64
	BBoxCount       int
	ZoneCount       int
	Limit           int
	OutputPrefix    string
	RequestTimeout  time.Duration
	AppendTimestamp bool
	Seed            int64
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base", "http://localhost:8090", "API base URL")
	flag.StringVar(&cfg.Collection, "collection", "g7", "Collection id")
	flag.IntVar(&cfg.Resolution, "resolution", 7, "Resolution of the collection's zones")
	flag.StringVar(&cfg.Accept, "accept", "application/geo+json", "Accept header")
	flag.IntVar(&cfg.Concurrency, "concurrency", 32, "Concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 60*time.Second, "Test duration")
	flag.Float64Var(&cfg.ZipfS, "zipf-s", 1.3, "Zipf parameter s (>1)")
	flag.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf parameter v (>=1)")
	flag.IntVar(&cfg.BBoxCount, "bboxes", 128, "Distinct bboxes in pool")
	flag.IntVar(&cfg.ZoneCount, "zones", 128, "Distinct zones in pool")
	flag.IntVar(&cfg.Limit, "limit", 100, "limit parameter on item listings (0 omits it)")
	flag.StringVar(&cfg.OutputPrefix, "out", "results/loadgen", "Output file prefix (JSON/CSV)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.BoolVar(&cfg.AppendTimestamp, "append-ts", true, "Append UTC timestamp to output prefix")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Workload seed (0 uses the clock)")
	flag.Parse()
	return cfg
}

// request result (one sample per request)
type sample struct {
	Timestamp time.Time
	Latency   time.Duration
	Status    int
	ErrorMsg  string
	Kind      kind
	Label     string
}

type kindStats struct {
	Total   int64   `json:"total"`
	Success int64   `json:"success"`
	P50Ms   float64 `json:"p50_ms"`
	P95Ms   float64 `json:"p95_ms"`
}

type summary struct {
	StartTime     time.Time            `json:"start"`
	EndTime       time.Time            `json:"end"`
	DurationSec   float64              `json:"duration_sec"`
	TotalRequests int64                `json:"total"`
	SuccessCount  int64                `json:"success"`
	ErrorCount    int64                `json:"errors"`
	ThroughputRPS float64              `json:"throughput_rps"`
	P50Ms         float64              `json:"p50_ms"`
	P95Ms         float64              `json:"p95_ms"`
	P99Ms         float64              `json:"p99_ms"`
	ByKind        map[string]kindStats `json:"by_kind"`
	Concurrency   int                  `json:"concurrency"`
	ZipfS         float64              `json:"zipf_s"`
	ZipfV         float64              `json:"zipf_v"`
	Pool          int                  `json:"pool"`
	BaseURL       string               `json:"base"`
	Collection    string               `json:"collection"`
	Seed          int64                `json:"seed"`
}

func ok(s sample) bool { return s.ErrorMsg == "" && s.Status >= 200 && s.Status < 300 }

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }

// aggregate folds samples into a summary and streams each one to w.
type aggregate struct {
	total, success, errors int64
	latMs                  []float64
	byKind                 map[kind][]float64
	kindTotal              map[kind]int64
}

func newAggregate() *aggregate {
	return &aggregate{
		latMs:     make([]float64, 0, 1<<16),
		byKind:    map[kind][]float64{},
		kindTotal: map[kind]int64{},
	}
}

func (a *aggregate) add(s sample) {
	a.total++
	a.kindTotal[s.Kind]++
	if !ok(s) {
		a.errors++
		return
	}
	a.success++
	l := ms(s.Latency)
	a.latMs = append(a.latMs, l)
	a.byKind[s.Kind] = append(a.byKind[s.Kind], l)
}

func (a *aggregate) summary(cfg Config, pool int, start, end time.Time) summary {
	elapsed := end.Sub(start).Seconds()
	sort.Float64s(a.latMs)
	s := summary{
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
		DurationSec:   elapsed,
		TotalRequests: a.total,
		SuccessCount:  a.success,
		ErrorCount:    a.errors,
		P50Ms:         percentile(a.latMs, 50),
		P95Ms:         percentile(a.latMs, 95),
		P99Ms:         percentile(a.latMs, 99),
		ByKind:        map[string]kindStats{},
		Concurrency:   cfg.Concurrency,
		ZipfS:         cfg.ZipfS,
		ZipfV:         cfg.ZipfV,
		Pool:          pool,
		BaseURL:       cfg.BaseURL,
		Collection:    cfg.Collection,
		Seed:          cfg.Seed,
	}
	if elapsed > 0 {
		s.ThroughputRPS = float64(a.total) / elapsed
	}
	for k, n := range a.kindTotal {
		lat := a.byKind[k]
		sort.Float64s(lat)
		s.ByKind[k.String()] = kindStats{
			Total:   n,
			Success: int64(len(lat)),
			P50Ms:   percentile(lat, 50),
			P95Ms:   percentile(lat, 95),
		}
	}
	return s
}

func writeSample(w *csv.Writer, s sample) {
	_ = w.Write([]string{
		s.Timestamp.UTC().Format(time.RFC3339Nano),
		fmt.Sprintf("%.3f", ms(s.Latency)),
		fmt.Sprintf("%d", s.Status),
		s.ErrorMsg,
		s.Kind.String(),
		s.Label,
	})
}

func main() {
	cfg := loadConfig()
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPrefix), 0o750); err != nil {
		log.Fatalf("mkdir results: %v", err)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		log.Fatalf("bad base URL %q", cfg.BaseURL)
	}

	prefix := cfg.OutputPrefix
	if cfg.AppendTimestamp {
		prefix = fmt.Sprintf("%s_%s", prefix, time.Now().UTC().Format("20060102_150405Z"))
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	// #nosec G404 -- workload sampling, not security sensitive.
	r := rand.New(rand.NewSource(cfg.Seed))
	pool := buildPool(base, cfg.Collection,
		makeBBoxes(cfg.BBoxCount, r),
		makeZones(cfg.ZoneCount, cfg.Resolution, r),
		cfg.Limit)
	if len(pool) == 0 {
		log.Fatalf("empty request pool")
	}
	imax := uint64(len(pool)) - 1

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 4 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          1024,
			MaxIdleConnsPerHost:   256,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   4 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		Timeout: cfg.RequestTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	csvPath := prefix + "_samples.csv"
	jsonPath := prefix + "_summary.json"
	csvFile, err := os.Create(filepath.Clean(csvPath))
	if err != nil {
		log.Printf("open csv: %v", err)
		return
	}
	defer func() { _ = csvFile.Close() }()
	csvWriter := csv.NewWriter(csvFile)

	samplesChan := make(chan sample, 4096)
	resultsChan := make(chan *aggregate, 1)
	go func() {
		_ = csvWriter.Write([]string{"timestamp", "latency_ms", "status", "error", "kind", "target"})
		agg := newAggregate()
		for s := range samplesChan {
			agg.add(s)
			writeSample(csvWriter, s)
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Printf("csv flush error: %v", err)
		}
		resultsChan <- agg
	}()

	startTime := time.Now()
	log.Printf("loadgen start base=%s collection=%s dur=%s conc=%d zipf(s=%.2f,v=%.2f) pool=%d seed=%d",
		cfg.BaseURL, cfg.Collection, cfg.Duration, cfg.Concurrency, cfg.ZipfS, cfg.ZipfV, len(pool), cfg.Seed)

	var wg sync.WaitGroup
	wg.Add(cfg.Concurrency)
	for workerID := range cfg.Concurrency {
		go func(id int) {
			defer wg.Done()

			// #nosec G404 -- workload sampling, not security sensitive.
			rWorker := rand.New(rand.NewSource(cfg.Seed + int64(id) + 1))
			zipfDist := rand.NewZipf(rWorker, cfg.ZipfS, cfg.ZipfV, imax)
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				v := zipfDist.Uint64()
				if v > uint64(math.MaxInt) || int(v) >= len(pool) {
					continue
				}
				t := pool[int(v)]
				result := fire(ctx, httpClient, t, cfg.Accept)

				select {
				case samplesChan <- result:
				case <-ctx.Done():
					return
				}
			}
		}(workerID)
	}

	go func() {
		<-ctx.Done()
		wg.Wait()
		close(samplesChan)
	}()

	agg := <-resultsChan
	runSummary := agg.summary(cfg, len(pool), startTime, time.Now())

	jsonFile, err := os.Create(filepath.Clean(jsonPath))
	if err == nil {
		enc := json.NewEncoder(jsonFile)
		enc.SetIndent("", "  ")
		_ = enc.Encode(runSummary)
		_ = jsonFile.Close()
	}

	log.Printf("done: total=%d succ=%d err=%d thr=%.2f rps p50=%.1fms p95=%.1fms p99=%.1fms",
		runSummary.TotalRequests, runSummary.SuccessCount, runSummary.ErrorCount,
		runSummary.ThroughputRPS, runSummary.P50Ms, runSummary.P95Ms, runSummary.P99Ms)
	log.Printf("wrote %s and %s", jsonPath, csvPath)
}

func fire(ctx context.Context, client *http.Client, t target, accept string) sample {
	start := time.Now()
	s := sample{Timestamp: start, Kind: t.Kind, Label: t.Label}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	req.Header.Set("Accept", accept)
	resp, err := client.Do(req)
	s.Latency = time.Since(start)
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	s.Status = resp.StatusCode
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if !ok(s) {
		s.ErrorMsg = fmt.Sprintf("status=%d", resp.StatusCode)
	}
	return s
}
