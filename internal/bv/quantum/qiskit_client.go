package quantum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// QiskitConfig holds IBM Qiskit Runtime API configuration
type QiskitConfig struct {
	// IBM Cloud API Key
	APIKey string

	// Base URL for IBM Quantum API
	BaseURL string

	// Backend name (e.g., "ibmq_qasm_simulator", "ibm_kyoto")
	BackendName string

	// PollInterval between job status checks, defaults to 2s
	PollInterval time.Duration

	HTTPClient *http.Client
}

// QiskitClient handles IBM Qiskit Runtime API interactions
type QiskitClient struct {
	config *QiskitConfig

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// QiskitJob represents a quantum job
type QiskitJob struct {
	ID        string    `json:"id"`
	Backend   string    `json:"backend"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created"`
}

// QiskitResult represents job execution results
type QiskitResult struct {
	Counts        map[string]int `json:"counts"`
	Success       bool           `json:"success"`
	StatusMsg     string         `json:"status"`
	JobID         string         `json:"job_id"`
	ExecutionTime float64        `json:"execution_time"`
}

// QiskitCircuit is the job submission payload
type QiskitCircuit struct {
	QASM       string      `json:"qasm"`
	Shots      int         `json:"shots"`
	Backend    string      `json:"backend"`
	NoiseModel *NoiseModel `json:"noise_model,omitempty"`
}

// IBM Quantum API endpoints
const (
	DefaultQiskitURL = "https://api.quantum-computing.ibm.com"
	TokenEndpoint    = "/api/auth/login"
	JobsEndpoint     = "/api/Network/ibm-q/Groups/open/Projects/main/Jobs"
	BackendsEndpoint = "/api/Network/ibm-q/Groups/open/Projects/main/devices"
)

// Job status constants
const (
	JobStatusQueued    = "QUEUED"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
	JobStatusCancelled = "CANCELLED"
)

// NewQiskitClient creates a new Qiskit API client. Authentication happens on
// the first request.
func NewQiskitClient(config *QiskitConfig) (*QiskitClient, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("IBM Cloud API key is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultQiskitURL
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: 60 * time.Second,
		}
	}

	return &QiskitClient{config: config}, nil
}

// BackendName returns the configured device
func (c *QiskitClient) BackendName() string {
	return c.config.BackendName
}

func (c *QiskitClient) authenticate(ctx context.Context) error {
	var result struct {
		ID          string `json:"id"`
		TTL         int    `json:"ttl"`
		AccessToken string `json:"access_token"`
	}

	payload := map[string]string{"apiToken": c.config.APIKey}
	if err := c.do(ctx, http.MethodPost, TokenEndpoint, "", payload, &result, http.StatusOK); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.TTL) * time.Second)
	return nil
}

// token returns a valid access token, refreshing it five minutes before expiry
func (c *QiskitClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken == "" || time.Now().After(c.tokenExpiry.Add(-5*time.Minute)) {
		if err := c.authenticate(ctx); err != nil {
			return "", err
		}
	}
	return c.accessToken, nil
}

// do performs a JSON request and decodes the response into out when non-nil
func (c *QiskitClient) do(ctx context.Context, method, path, token string, payload, out interface{}, okStatus ...int) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	accepted := false
	for _, s := range okStatus {
		if resp.StatusCode == s {
			accepted = true
			break
		}
	}
	if !accepted {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s (status: %d)", method, path, string(msg), resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SubmitJob submits a quantum circuit for execution
func (c *QiskitClient) SubmitJob(ctx context.Context, circuit *QiskitCircuit) (*QiskitJob, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var job QiskitJob
	if err := c.do(ctx, http.MethodPost, JobsEndpoint, token, circuit, &job, http.StatusOK, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("job submission failed: %w", err)
	}
	return &job, nil
}

// GetJobStatus retrieves the status of a quantum job
func (c *QiskitClient) GetJobStatus(ctx context.Context, jobID string) (*QiskitJob, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var job QiskitJob
	if err := c.do(ctx, http.MethodGet, JobsEndpoint+"/"+jobID, token, nil, &job, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get job status failed: %w", err)
	}
	return &job, nil
}

// WaitForJob polls until the job reaches a terminal state
func (c *QiskitClient) WaitForJob(ctx context.Context, jobID string, maxWaitTime time.Duration) (*QiskitJob, error) {
	timeout := time.NewTimer(maxWaitTime)
	defer timeout.Stop()
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeout.C:
			return nil, fmt.Errorf("job %s timed out after %v", jobID, maxWaitTime)

		case <-ticker.C:
			job, err := c.GetJobStatus(ctx, jobID)
			if err != nil {
				return nil, err
			}

			switch job.Status {
			case JobStatusCompleted:
				return job, nil
			case JobStatusFailed:
				return job, fmt.Errorf("job %s failed", jobID)
			case JobStatusCancelled:
				return job, fmt.Errorf("job %s was cancelled", jobID)
			}
		}
	}
}

// GetJobResult retrieves the results of a completed job
func (c *QiskitClient) GetJobResult(ctx context.Context, jobID string) (*QiskitResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var result QiskitResult
	if err := c.do(ctx, http.MethodGet, JobsEndpoint+"/"+jobID+"/results", token, nil, &result, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get job result failed: %w", err)
	}
	if result.JobID == "" {
		result.JobID = jobID
	}
	return &result, nil
}

// CancelJob cancels a running or queued job
func (c *QiskitClient) CancelJob(ctx context.Context, jobID string) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPost, JobsEndpoint+"/"+jobID+"/cancel", token, nil, nil, http.StatusOK); err != nil {
		return fmt.Errorf("cancel job failed: %w", err)
	}
	return nil
}

// ListBackends retrieves available quantum backends
func (c *QiskitClient) ListBackends(ctx context.Context) ([]map[string]interface{}, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var backends []map[string]interface{}
	if err := c.do(ctx, http.MethodGet, BackendsEndpoint, token, nil, &backends, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list backends failed: %w", err)
	}
	return backends, nil
}

// ExecuteCircuitSync submits a circuit, waits for it and returns its results.
// A job abandoned because ctx ended is cancelled on a best-effort basis.
func (c *QiskitClient) ExecuteCircuitSync(ctx context.Context, circuit *QiskitCircuit, maxWaitTime time.Duration) (*QiskitResult, error) {
	job, err := c.SubmitJob(ctx, circuit)
	if err != nil {
		return nil, err
	}

	completedJob, err := c.WaitForJob(ctx, job.ID, maxWaitTime)
	if err != nil {
		if ctx.Err() != nil {
			cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = c.CancelJob(cancelCtx, job.ID)
			cancel()
		}
		return nil, fmt.Errorf("job execution failed: %w", err)
	}

	result, err := c.GetJobResult(ctx, completedJob.ID)
	if err != nil {
		return nil, fmt.Errorf("result retrieval failed: %w", err)
	}
	return result, nil
}
