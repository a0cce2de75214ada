package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// ExtensionClient handles communication with the external validation service.
// Each extension point maps to a configured endpoint path under the service
// base URL.
type ExtensionClient struct {
	httpClient *http.Client
	config     *config.ServiceExtensionConfig
	logger     *logrus.Logger
}

// NewExtensionClient creates a new extension client instance
func NewExtensionClient(cfg *config.ServiceExtensionConfig, logger *logrus.Logger) *ExtensionClient {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &ExtensionClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		logger: logger,
	}
}

// Enabled reports whether the extension service is configured and active
func (c *ExtensionClient) Enabled() bool {
	return c.config.Enabled && c.config.BaseURL != ""
}

// endpointFor resolves the endpoint path of an extension point
func (c *ExtensionClient) endpointFor(extensionPoint string) (string, error) {
	switch extensionPoint {
	case models.ExtensionPointPreConsentAuthorization:
		return c.config.Endpoints.PreConsentAuthorization, nil
	case models.ExtensionPointConsentValidation:
		return c.config.Endpoints.ConsentValidation, nil
	case models.ExtensionPointConsentPersistence:
		return c.config.Endpoints.ConsentPersistence, nil
	case models.ExtensionPointConsentManage:
		return c.config.Endpoints.ConsentManage, nil
	case models.ExtensionPointConsentManageDelete:
		return c.config.Endpoints.ConsentManageDelete, nil
	default:
		return "", fmt.Errorf("unknown extension point: %s", extensionPoint)
	}
}

// Invoke makes an HTTP POST request to the endpoint of the given extension
// point, wrapping the payload in the standard request envelope
func (c *ExtensionClient) Invoke(ctx context.Context, extensionPoint string, payload interface{}) (*models.ExternalServiceResponse, error) {
	if !c.Enabled() {
		c.logger.Debug("Extension service not configured, skipping call")
		return &models.ExternalServiceResponse{Status: models.ExternalStatusSuccess}, nil
	}

	endpoint, err := c.endpointFor(extensionPoint)
	if err != nil {
		return nil, err
	}
	url := c.config.GetExtensionURL(endpoint)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extension payload: %w", err)
	}

	envelope := &models.ExternalServiceRequest{
		RequestID: utils.GenerateID(),
		Payload:   models.JSON(payloadJSON),
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extension request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create extension request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"url":             url,
		"extension_point": extensionPoint,
		"request_id":      envelope.RequestID,
	}).Debug("Calling extension service")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithError(err).WithField("duration", duration).Error("Extension service call failed")
		return nil, fmt.Errorf("extension service call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extension response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":     resp.StatusCode,
		"duration":        duration,
		"extension_point": extensionPoint,
	}).Debug("Extension service response received")

	var extResponse models.ExternalServiceResponse
	if err := json.Unmarshal(body, &extResponse); err != nil {
		return nil, fmt.Errorf("failed to parse extension response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"error_code":  extResponse.ErrorCode,
		}).Warn("Extension service returned non-success status")

		if extResponse.Status == "" {
			return nil, fmt.Errorf("extension service returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return &extResponse, nil
}
