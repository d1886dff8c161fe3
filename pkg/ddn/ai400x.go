package ddn

import (
	"context"
	"fmt"
	"net/http"
)

// GPUMetrics is the AI400X GPU-optimized storage metric set.
type GPUMetrics struct {
	ReadThroughputGBps  float64 `json:"read_throughput_gbps"`
	WriteThroughputGBps float64 `json:"write_throughput_gbps"`
	ActiveGPUClients    int     `json:"active_gpu_clients"`
}

// AI400XHealth fetches the AI400X platform health.
func (c *Client) AI400XHealth(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, c.eps.AI400X+"/api/v1/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AI400XGPUMetrics fetches GPU storage metrics.
func (c *Client) AI400XGPUMetrics(ctx context.Context) (*GPUMetrics, error) {
	var out GPUMetrics
	if err := c.get(ctx, c.eps.AI400X+"/api/v1/gpu/storage-metrics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreCheckpoint stores an AI model checkpoint and returns its id.
func (c *Client) StoreCheckpoint(ctx context.Context, modelName string, epoch, sizeGB int, metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	body := map[string]any{
		"model_name":         modelName,
		"checkpoint_epoch":   epoch,
		"checkpoint_size_gb": sizeGB,
		"metadata":           metadata,
	}
	var out struct {
		CheckpointID string `json:"checkpoint_id"`
	}
	if err := c.post(ctx, c.eps.AI400X+"/api/v1/checkpoints/store", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.CheckpointID, nil
}

// RetrieveCheckpoint fetches checkpoint metadata by id.
func (c *Client) RetrieveCheckpoint(ctx context.Context, checkpointID string) (map[string]any, error) {
	var out map[string]any
	url := fmt.Sprintf("%s/api/v1/checkpoints/%s", c.eps.AI400X, checkpointID)
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RunDataLoadingBenchmark runs the AI data-loading benchmark.
func (c *Client) RunDataLoadingBenchmark(ctx context.Context, datasetSizeGB, batchSize int, dataFormat string) (*BenchmarkResult, error) {
	if dataFormat == "" {
		dataFormat = "tfrecord"
	}
	body := map[string]any{
		"dataset_size_gb":   datasetSizeGB,
		"batch_size":        batchSize,
		"data_format":       dataFormat,
		"test_duration_sec": 60,
	}
	var out BenchmarkResult
	if err := c.post(ctx, c.eps.AI400X+"/api/v1/benchmark/data-loading", body, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
