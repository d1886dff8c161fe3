package ddn

import (
	"context"
	"fmt"
	"net/http"
)

// HealthStatus is the common shape of the product health endpoints.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ClusterStatus describes the EXAScaler Lustre cluster.
type ClusterStatus struct {
	State      string `json:"state"`
	MDSServers int    `json:"mds_servers"`
	OSSServers int    `json:"oss_servers"`
}

// StripeInfo is the striping configuration of one Lustre file.
type StripeInfo struct {
	FileID      string `json:"file_id"`
	StripeCount int    `json:"stripe_count"`
	StripeSize  string `json:"stripe_size"`
}

// BenchmarkResult is the generic shape of the benchmark endpoints.
type BenchmarkResult struct {
	ThroughputMBps float64 `json:"throughput_mbps"`
	IOPS           int64   `json:"iops"`
	DurationSec    float64 `json:"duration_sec"`
}

// QuotaUsage reports consumption against a namespace quota.
type QuotaUsage struct {
	Namespace   string  `json:"namespace"`
	UsedGB      float64 `json:"used_gb"`
	SoftLimitGB float64 `json:"soft_limit_gb"`
	HardLimitGB float64 `json:"hard_limit_gb"`
}

// EXAScalerHealth fetches the EXAScaler health status.
func (c *Client) EXAScalerHealth(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, c.eps.EXAScaler+"/api/v1/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EXAScalerClusterStatus fetches MDS/OSS cluster state.
func (c *Client) EXAScalerClusterStatus(ctx context.Context) (*ClusterStatus, error) {
	var out ClusterStatus
	if err := c.get(ctx, c.eps.EXAScaler+"/api/v1/cluster/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunThroughputBenchmark starts an EXAScaler throughput benchmark.
func (c *Client) RunThroughputBenchmark(ctx context.Context, fileSizeGB, parallelStreams int) (*BenchmarkResult, error) {
	body := map[string]any{
		"operation":        "benchmark",
		"test_type":        "throughput",
		"file_size_gb":     fileSizeGB,
		"parallel_streams": parallelStreams,
	}
	var out BenchmarkResult
	if err := c.post(ctx, c.eps.EXAScaler+"/api/v1/performance/benchmark", body, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStripedFile creates a Lustre striped file and returns its id.
func (c *Client) CreateStripedFile(ctx context.Context, path string, stripeCount int, stripeSize string, sizeMB int) (string, error) {
	body := map[string]any{
		"path":         path,
		"stripe_count": stripeCount,
		"stripe_size":  stripeSize,
		"size_mb":      sizeMB,
	}
	var out struct {
		FileID string `json:"file_id"`
	}
	if err := c.post(ctx, c.eps.EXAScaler+"/api/v1/files/create", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.FileID, nil
}

// VerifyFileStriping fetches a file's striping configuration.
func (c *Client) VerifyFileStriping(ctx context.Context, fileID string) (*StripeInfo, error) {
	var out StripeInfo
	url := fmt.Sprintf("%s/api/v1/files/%s/stripe-info", c.eps.EXAScaler, fileID)
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNamespace creates an isolated tenant namespace and returns its id.
func (c *Client) CreateNamespace(ctx context.Context, name, rootPath, ownerDomain, mountType string) (string, error) {
	if mountType == "" {
		mountType = "subdirectory"
	}
	body := map[string]any{
		"namespace_name": name,
		"root_path":      rootPath,
		"mount_type":     mountType,
		"owner_domain":   ownerDomain,
	}
	var out struct {
		NamespaceID string `json:"namespace_id"`
	}
	if err := c.post(ctx, c.eps.EXAScaler+"/api/v1/namespaces/create", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.NamespaceID, nil
}

// SetStorageQuota sets a namespace quota and returns the quota id.
func (c *Client) SetStorageQuota(ctx context.Context, namespace string, softLimitGB, hardLimitGB float64, gracePeriodHours int) (string, error) {
	if gracePeriodHours <= 0 {
		gracePeriodHours = 24
	}
	body := map[string]any{
		"namespace":          namespace,
		"quota_type":         "storage",
		"soft_limit_gb":      softLimitGB,
		"hard_limit_gb":      hardLimitGB,
		"grace_period_hours": gracePeriodHours,
	}
	var out struct {
		QuotaID string `json:"quota_id"`
	}
	if err := c.post(ctx, c.eps.EXAScaler+"/api/v1/quotas/set", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.QuotaID, nil
}

// GetQuotaUsage fetches quota usage for a namespace.
func (c *Client) GetQuotaUsage(ctx context.Context, namespace string) (*QuotaUsage, error) {
	var out QuotaUsage
	url := fmt.Sprintf("%s/api/v1/quotas/%s/usage", c.eps.EXAScaler, namespace)
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
