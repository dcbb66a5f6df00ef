package services

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/utils"
)

// maxMarkupBytes caps how much of a page body the analyzer will read.
const maxMarkupBytes = 5 << 20

// PageFetcher retrieves raw markup for a URL within a bounded timeout.
// Every failure mode (network error, timeout, non-success status) surfaces
// as a fetch error; callers never see partial markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type pageFetcher struct {
	log     *logger.Logger
	client  *http.Client
	timeout time.Duration
}

func NewPageFetcher(baseLog *logger.Logger, client *http.Client) PageFetcher {
	log := baseLog.With("service", "PageFetcher")
	timeoutSec := utils.GetEnvAsInt("FETCH_TIMEOUT_SECONDS", 10, baseLog)
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	if client == nil {
		client = &http.Client{}
	}
	return &pageFetcher{
		log:     log,
		client:  client,
		timeout: time.Duration(timeoutSec) * time.Second,
	}
}

func (pf *pageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pf.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Fetchf("build request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", "clarity-analyzer/1.0")

	resp, err := pf.client.Do(req)
	if err != nil {
		pf.log.Warn("Page fetch failed", "url", url, "error", err)
		return nil, apperr.Fetchf("get %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pf.log.Warn("Page fetch returned non-success status", "url", url, "status", resp.StatusCode)
		return nil, apperr.Fetchf("get %s: status %d", url, resp.StatusCode)
	}

	markup, err := io.ReadAll(io.LimitReader(resp.Body, maxMarkupBytes))
	if err != nil {
		return nil, apperr.Fetchf("read body of %s: %v", url, err)
	}
	return markup, nil
}
