package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"chitfund-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the payload for /health/json and the status dashboard.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	CPU           CPUInfo    `json:"cpu"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	RSS      int `json:"rss"`
	HeapUsed int `json:"heapUsed"`
}

type CPUInfo struct {
	LoadAvg []string `json:"loadAvg"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// CollectHealth probes the database, Redis, and the frontend, and reads the
// traffic counters the HealthMarker middleware keeps in Redis. Overall status
// is "ok" only when both database and Redis answer.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, frontendURL string) CollectResult {
	dbDep := probeDatabase(db)
	redisDep, traffic, startMs := probeRedis(ctx, rdb)

	result := CollectResult{
		Status:  "issue",
		Runtime: runtimeInfo(startMs),
		Traffic: traffic,
		Dependencies: map[string]DepStatus{
			"database": dbDep,
			"redis":    redisDep,
			"frontend": probeFrontend(frontendURL),
		},
	}
	if dbDep.Status == "connected" && redisDep.Status == "connected" {
		result.Status = "ok"
	}
	return result
}

func probeDatabase(db DBPinger) DepStatus {
	if db == nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := db.Ping(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// probeRedis pings Redis and, when reachable, reads back the traffic stats.
// The returned start time is the stored process start in unix millis; it is
// written on first read so uptime survives across serverless invocations.
func probeRedis(ctx context.Context, rdb *redis.Client) (DepStatus, TrafficInfo, int64) {
	traffic := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startMs := time.Now().UnixMilli()
	if rdb == nil {
		return DepStatus{Status: "disconnected"}, traffic, startMs
	}

	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return DepStatus{Status: "error"}, traffic, startMs
	}
	pingMs := time.Since(start).Milliseconds()

	if stored, err := rdb.Get(ctx, middleware.KeyStartTime).Int64(); err == nil {
		startMs = stored
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
	}

	traffic.TotalRequests, _ = rdb.Get(ctx, middleware.KeyReqTotal).Int()
	traffic.FailedCount, _ = rdb.Get(ctx, middleware.KeyReqErrors).Int()
	traffic.SuccessCount = traffic.TotalRequests - traffic.FailedCount
	if traffic.TotalRequests > 0 {
		rate := float64(traffic.SuccessCount) / float64(traffic.TotalRequests) * 100
		traffic.SuccessRate = strconv.FormatFloat(rate, 'f', 1, 64)
	}
	msSum, _ := rdb.Get(ctx, middleware.KeyResTime).Float64()
	resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Int()
	if resCount > 0 {
		traffic.AvgResponseTime = strconv.FormatFloat(msSum/float64(resCount), 'f', 2, 64)
	}
	if raw, err := rdb.Get(ctx, middleware.KeyLastReq).Result(); err == nil && raw != "" {
		var last map[string]interface{}
		if json.Unmarshal([]byte(raw), &last) == nil {
			traffic.LastRequest = last
		}
	}
	return DepStatus{Status: "connected", PingMs: &pingMs}, traffic, startMs
}

func probeFrontend(url string) DepStatus {
	if url == "" {
		return DepStatus{Status: "unreachable"}
	}
	if ms := httpPing(url, 3*time.Second); ms != nil {
		return DepStatus{Status: "reachable", PingMs: ms}
	}
	return DepStatus{Status: "unreachable"}
}

func runtimeInfo(startMs int64) RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	return RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{RSS: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		CPU:           CPUInfo{LoadAvg: []string{"0.00", "0.00", "0.00"}},
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
}

func httpPing(url string, timeout time.Duration) *int64 {
	client := &http.Client{Timeout: timeout}
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	ms := time.Since(start).Milliseconds()
	return &ms
}
