package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-resty/resty/v2"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/metrics"
)

// Options configures a Source.
type Options struct {
	Endpoint  string
	AreaID    int
	PageSize  int
	Timeout   time.Duration
	UserAgent string
}

// Source queries the upstream listing API. It is safe for concurrent use
// and caches nothing: every call is one request.
type Source struct {
	client *resty.Client
	opts   Options
}

// NewSource builds a Source with its own HTTP client.
func NewSource(opts Options) *Source {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	c := resty.New().
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	return &Source{client: c, opts: opts}
}

// EventsForDate returns the listings for day in upstream order. Upstream
// failures are logged and yield an empty slice; callers cannot tell them
// apart from a day without events.
func (s *Source) EventsForDate(ctx context.Context, day civil.Date) []Record {
	start := time.Now()
	recs, err := s.fetch(ctx, day)
	took := time.Since(start)
	metrics.UpstreamDuration.Observe(took.Seconds())

	if err != nil {
		fe, _ := err.(*FetchError)
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("date", day.String()),
			slog.Duration("duration", took),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		}
		op := OpTransport
		if fe != nil {
			op = fe.Op
			attrs = append(attrs, slog.String("err_code", fe.Code()))
			if fe.Status != 0 {
				attrs = append(attrs, slog.Int("http_code", fe.Status))
			}
		}
		metrics.UpstreamFetches.WithLabelValues(op).Inc()
		logger.LogEvent(ctx, logger.Upstream, slog.LevelError, "upstream.fetch", attrs...)
		return []Record{}
	}

	outcome := "ok"
	if len(recs) == 0 {
		outcome = "empty"
	}
	metrics.UpstreamFetches.WithLabelValues(outcome).Inc()
	logger.LogEvent(ctx, logger.Upstream, slog.LevelDebug, "upstream.fetch",
		slog.String("status", "ok"),
		slog.String("outcome", outcome),
		slog.String("date", day.String()),
		slog.Int("events", len(recs)),
		slog.Duration("duration", took),
	)
	return recs
}

func (s *Source) fetch(ctx context.Context, day civil.Date) ([]Record, error) {
	from, to := Window(day)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("query", buildQuery(s.opts.AreaID, from, to, s.opts.PageSize)).
		Get(s.opts.Endpoint)
	if err != nil {
		return nil, &FetchError{Op: OpTransport, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &FetchError{Op: OpStatus, Status: resp.StatusCode()}
	}

	var payload graphQLResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, &FetchError{Op: OpDecode, Status: resp.StatusCode(), Err: err}
	}
	recs, err := payload.records()
	if err != nil {
		return nil, &FetchError{Op: OpDecode, Status: resp.StatusCode(), Err: err}
	}
	return recs, nil
}
