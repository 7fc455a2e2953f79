package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hjson/hjson-go"
)

const (
	DefaultListen            = "127.0.0.1:8000"
	DefaultUpdateTimeHour    = 1
	DefaultHTTPTimeout       = 10 * time.Second
	DefaultRateLimitInterval = 100 * time.Millisecond
	DefaultRateLimitBurst    = 10

	DefaultCircuitBreakerOpenThreshold        = 3
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 10 * time.Second
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type configUpstream struct {
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

type config struct {
	Listen            string            `json:"listen"`
	AuthUser          string            `json:"auth_user"`
	AuthPassword      string            `json:"auth_password"`
	SnapshotPath      string            `json:"snapshot_path"`
	UpdateTimeHour    *uint             `json:"update_time_hour"`
	CustomerLimit     uint              `json:"customer_limit"`
	MaxRecords        uint              `json:"max_records"`
	WorkerPoolSize    uint              `json:"worker_pool_size"`
	HTTPTimeout       duration          `json:"http_timeout"`
	RateLimitInterval duration          `json:"rate_limit_interval"`
	RateLimitBurst    uint              `json:"rate_limit_burst"`
	Upstream          configUpstream    `json:"upstream"`
	CustomAttributes  map[string]string `json:"custom_attributes"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetSnapshotPath() string {
	if c.SnapshotPath != "" {
		return c.SnapshotPath
	}

	return filepath.Join(os.TempDir(), "ipcensus_services.json")
}

func (c config) GetUpdateTimeHour() int {
	if c.UpdateTimeHour == nil {
		return DefaultUpdateTimeHour
	}

	return int(*c.UpdateTimeHour)
}

func (c config) GetCustomerLimit() int {
	return int(c.CustomerLimit)
}

func (c config) GetMaxRecords() int {
	return int(c.MaxRecords)
}

func (c config) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

func (c config) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c config) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c config) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c config) GetCustomAttributes() map[string]string {
	if c.CustomAttributes == nil {
		return map[string]string{}
	}

	return c.CustomAttributes
}

func parseConfig(file io.Reader) (*config, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot convert config: %w", err)
	}

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	if conf.GetUpdateTimeHour() > 23 {
		return nil, fmt.Errorf("incorrect update_time_hour %d", conf.GetUpdateTimeHour())
	}

	if (conf.AuthUser == "") != (conf.AuthPassword == "") {
		return nil, fmt.Errorf("auth_user and auth_password must be set together")
	}

	return &conf, nil
}
