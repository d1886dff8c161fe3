package ddn

import (
	"context"
	"net/http"
)

// InfiniaStatus reports the orchestration platform state.
type InfiniaStatus struct {
	State         string `json:"state"`
	ActiveTenants int    `json:"active_tenants"`
	Version       string `json:"version"`
}

// WorkloadProfile is an Infinia workload optimization result.
type WorkloadProfile struct {
	ProfileID         string  `json:"profile_id"`
	RecommendedNodes  int     `json:"recommended_nodes"`
	ExpectedTokensSec float64 `json:"expected_tokens_per_sec"`
}

// InfiniaStatusInfo fetches Infinia platform status.
func (c *Client) InfiniaStatusInfo(ctx context.Context) (*InfiniaStatus, error) {
	var out InfiniaStatus
	if err := c.get(ctx, c.eps.Infinia+"/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OptimizeLLMWorkload requests an optimization profile for an LLM training
// workload.
func (c *Client) OptimizeLLMWorkload(ctx context.Context, modelSize string, gpus, expectedTokensPerSec int) (*WorkloadProfile, error) {
	body := map[string]any{
		"workload_type":           "llm_training",
		"model_size":              modelSize,
		"gpus":                    gpus,
		"expected_tokens_per_sec": expectedTokensPerSec,
	}
	var out WorkloadProfile
	if err := c.post(ctx, c.eps.Infinia+"/api/v1/workload/optimize", body, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunCheckpointBenchmark benchmarks checkpoint write performance.
func (c *Client) RunCheckpointBenchmark(ctx context.Context, modelSizeGB int, checkpointType string, targetTimeSec int) (*BenchmarkResult, error) {
	if checkpointType == "" {
		checkpointType = "full"
	}
	if targetTimeSec <= 0 {
		targetTimeSec = 60
	}
	body := map[string]any{
		"model_size_gb":   modelSizeGB,
		"checkpoint_type": checkpointType,
		"target_time_sec": targetTimeSec,
	}
	var out BenchmarkResult
	if err := c.post(ctx, c.eps.Infinia+"/api/v1/benchmark/checkpoint", body, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupOrchestration configures edge-core-cloud data orchestration and
// returns the orchestration id.
func (c *Client) SetupOrchestration(ctx context.Context, edgeNodes int, coreDatacenter, cloudProvider string, datasetSizeTB int) (string, error) {
	body := map[string]any{
		"edge_nodes":      edgeNodes,
		"core_datacenter": coreDatacenter,
		"cloud_provider":  cloudProvider,
		"data_flow":       "bidirectional",
		"dataset_size_tb": datasetSizeTB,
	}
	var out struct {
		OrchestrationID string `json:"orchestration_id"`
	}
	if err := c.post(ctx, c.eps.Infinia+"/api/v1/orchestration/setup", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.OrchestrationID, nil
}
