package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

const defaultTimeout = 5 * time.Minute

// HTTPWorker delegates backtest execution to a remote runner over HTTP.
type HTTPWorker struct {
	endpoint string
	client   *http.Client
}

// NewHTTP creates a worker client for the runner at endpoint.
func NewHTTP(endpoint string, timeout time.Duration) *HTTPWorker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPWorker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Run implements Worker. Cancellation of ctx aborts the request and
// surfaces ctx.Err; any non-2xx response is a WorkerError.
func (w *HTTPWorker) Run(ctx context.Context, req core.JobRequest) (*core.JobResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, core.WrapError(core.ErrWorkerFailed, fmt.Errorf("encoding request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.endpoint+"/run-backtest", bytes.NewReader(body))
	if err != nil {
		return nil, core.WrapError(core.ErrWorkerFailed, fmt.Errorf("building request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.WrapError(core.ErrWorkerFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.WrapError(core.ErrWorkerFailed,
			fmt.Errorf("worker responded with %d", resp.StatusCode))
	}

	var result core.JobResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrWorkerFailed, fmt.Errorf("decoding response: %w", err))
	}
	return &result, nil
}
