package ddn

import (
	"context"
	"fmt"
	"net/http"
)

// SystemInfo is the IntelliFlash system description.
type SystemInfo struct {
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`
	ControllerCount int    `json:"controller_count"`
}

// Volume is an IntelliFlash volume.
type Volume struct {
	VolumeID      string `json:"volume_id"`
	Name          string `json:"name"`
	SizeGB        int    `json:"size_gb"`
	Compression   bool   `json:"compression"`
	Deduplication bool   `json:"deduplication"`
}

// EfficiencyMetrics reports dedup and compression ratios.
type EfficiencyMetrics struct {
	DedupRatio       float64 `json:"dedup_ratio"`
	CompressionRatio float64 `json:"compression_ratio"`
	LogicalUsedGB    float64 `json:"logical_used_gb"`
	PhysicalUsedGB   float64 `json:"physical_used_gb"`
}

// IntelliFlashSystemInfo fetches system information.
func (c *Client) IntelliFlashSystemInfo(ctx context.Context) (*SystemInfo, error) {
	var out SystemInfo
	if err := c.get(ctx, c.eps.IntelliFlash+"/api/v1/system/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVolume creates an IntelliFlash volume and returns its id.
func (c *Client) CreateVolume(ctx context.Context, name string, sizeGB int, compression, deduplication bool) (string, error) {
	body := map[string]any{
		"name":          name,
		"size_gb":       sizeGB,
		"compression":   compression,
		"deduplication": deduplication,
	}
	var out struct {
		VolumeID string `json:"volume_id"`
	}
	if err := c.post(ctx, c.eps.IntelliFlash+"/api/v1/volumes/create", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.VolumeID, nil
}

// GetVolume fetches volume details by id.
func (c *Client) GetVolume(ctx context.Context, volumeID string) (*Volume, error) {
	var out Volume
	url := fmt.Sprintf("%s/api/v1/volumes/%s", c.eps.IntelliFlash, volumeID)
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResizeVolume updates a volume's size.
func (c *Client) ResizeVolume(ctx context.Context, volumeID string, sizeGB int) error {
	url := fmt.Sprintf("%s/api/v1/volumes/%s", c.eps.IntelliFlash, volumeID)
	body := map[string]any{"size_gb": sizeGB}
	return c.doJSON(ctx, http.MethodPatch, url, body, nil, http.StatusOK)
}

// DeleteVolume removes a volume.
func (c *Client) DeleteVolume(ctx context.Context, volumeID string) error {
	url := fmt.Sprintf("%s/api/v1/volumes/%s", c.eps.IntelliFlash, volumeID)
	return c.doJSON(ctx, http.MethodDelete, url, nil, nil, http.StatusOK)
}

// StorageEfficiencyMetrics fetches dedup and compression metrics.
func (c *Client) StorageEfficiencyMetrics(ctx context.Context) (*EfficiencyMetrics, error) {
	var out EfficiencyMetrics
	if err := c.get(ctx, c.eps.IntelliFlash+"/api/v1/storage/efficiency", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
