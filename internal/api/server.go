package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/scu-obit/fcskit/internal/logger"
	"github.com/scu-obit/fcskit/internal/metrics"
	"github.com/scu-obit/fcskit/internal/source"
	"github.com/scu-obit/fcskit/pkg/fcs"
	"github.com/scu-obit/fcskit/pkg/hyperlog"
)

const (
	// DefaultMaxUpload bounds one uploaded file, after decompression.
	DefaultMaxUpload = 512 << 20

	maxJSONBody = 64 << 20
)

type Config struct {
	Store   *FileStore
	Metrics *metrics.Metrics
	// Gatherer backs GET /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   logger.Logger

	MaxUpload int64
	// UploadRate limits uploads per second across all clients. Zero or less
	// disables the limit.
	UploadRate float64
	// Decades is the M used when a transform request leaves it unset.
	Decades float64
	// Bins is the default WithBins value for transform requests.
	Bins int
	// SampleSize caps column responses when the request sets no limit.
	SampleSize int
}

type Server struct {
	store      *FileStore
	metrics    *metrics.Metrics
	log        logger.Logger
	limiter    *rate.Limiter
	promHTTP   http.Handler
	maxUpload  int64
	decades    float64
	bins       int
	sampleSize int
	clock      func() time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = NewFileStore(DefaultCapacity)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.UploadRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.UploadRate), max(int(cfg.UploadRate), 1))
	}
	return &Server{
		store:      cfg.Store,
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
		limiter:    limiter,
		promHTTP:   promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}),
		maxUpload:  cfg.MaxUpload,
		decades:    cfg.Decades,
		bins:       cfg.Bins,
		sampleSize: cfg.SampleSize,
		clock:      time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", s.handleMetrics)

	// Files
	e.POST("/v1/files", s.handleUpload)
	e.GET("/v1/files/:id", s.handleGetFile)
	e.DELETE("/v1/files/:id", s.handleDeleteFile)
	e.GET("/v1/files/:id/keywords", s.handleKeywords)
	e.GET("/v1/files/:id/columns/:param", s.handleColumn)
	e.POST("/v1/files/:id/columns/:param/hyperlog", s.handleColumnHyperlog)

	// Stateless transform
	e.POST("/v1/hyperlog", s.handleHyperlog)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"status": "ok",
		"files":  s.store.Len(),
	})
}

func (s *Server) handleMetrics(c *echo.Context) error {
	s.promHTTP.ServeHTTP(c.Response(), c.Request())
	return nil
}

func (s *Server) handleUpload(c *echo.Context) error {
	if !s.limiter.Allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "upload rate exceeded", "", "rate_limited")
	}
	readData, err := queryBool(c, "data", true)
	if err != nil {
		return writeErr(c, err)
	}

	buf, err := source.ReadAll(c.Request().Body, s.maxUpload)
	if err != nil {
		return writeErr(c, fmt.Errorf("read upload: %w", err))
	}
	defer func() { _ = buf.Close() }()

	log := s.log.With("compression", buf.Compression().String(), "bytes", buf.Len())
	start := time.Now()
	f, err := fcs.Parse(buf.Bytes(), readData, fcs.WithLogger(log))
	s.metrics.ObserveParse(f, err, time.Since(start))
	if err != nil {
		log.Warn("fcs upload rejected", "error", err)
		return writeErr(c, err)
	}

	rec := s.store.Put(c.QueryParam("name"), f, buf.Compression(), s.clock())
	s.metrics.SetStoredFiles(s.store.Len())
	log.Info("fcs file stored", "id", rec.ID, "events", f.NumEvents(), "parameters", f.NumParameters(), "warnings", len(f.Warnings))
	return writeJSON(c, http.StatusCreated, summarize(rec))
}

func (s *Server) lookup(c *echo.Context) (*FileRecord, error) {
	id := c.Param("id")
	rec, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return rec, nil
}

func (s *Server) handleGetFile(c *echo.Context) error {
	rec, err := s.lookup(c)
	if err != nil {
		return writeErr(c, err)
	}
	return writeJSON(c, http.StatusOK, summarize(rec))
}

func (s *Server) handleDeleteFile(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, fmt.Sprintf("%s: %s", ErrFileNotFound, id))
	}
	s.metrics.SetStoredFiles(s.store.Len())
	return writeJSON(c, http.StatusOK, DeleteFileResp{
		ID:      id,
		Object:  "fcs.file.deleted",
		Deleted: true,
	})
}

func (s *Server) handleKeywords(c *echo.Context) error {
	rec, err := s.lookup(c)
	if err != nil {
		return writeErr(c, err)
	}
	return writeJSON(c, http.StatusOK, keywordList(rec))
}

// column resolves the :param of a file route and returns its values.
func (s *Server) column(rec *FileRecord, ref string, limit int, sampled bool) (fcs.Parameter, []float64, error) {
	f := rec.File
	p, ok := resolveParameter(f, ref)
	if !ok {
		return fcs.Parameter{}, nil, fmt.Errorf("%w: %q", ErrParameterNotFound, ref)
	}
	if f.Events == nil {
		return p, nil, fcs.ErrNoEvents
	}
	return p, f.Events.SampledColumn(p.Index-1, limit, sampled), nil
}

func (s *Server) handleColumn(c *echo.Context) error {
	rec, err := s.lookup(c)
	if err != nil {
		return writeErr(c, err)
	}
	limit, err := queryInt(c, "limit", s.sampleSize)
	if err != nil {
		return writeErr(c, err)
	}
	sampled, err := queryBool(c, "sampled", false)
	if err != nil {
		return writeErr(c, err)
	}
	p, values, err := s.column(rec, c.Param("param"), limit, sampled)
	if err != nil {
		return writeErr(c, err)
	}
	return writeJSON(c, http.StatusOK, ColumnResponse{
		Object:    "fcs.column",
		FileID:    rec.ID,
		Parameter: parameterInfo(rec.File, p),
		Total:     rec.File.Events.Rows(),
		Count:     len(values),
		Sampled:   sampled,
		Values:    values,
	})
}

func (s *Server) handleColumnHyperlog(c *echo.Context) error {
	rec, err := s.lookup(c)
	if err != nil {
		return writeErr(c, err)
	}
	req, err := decodeBody[ColumnHyperlogReq](c)
	if err != nil {
		return writeErr(c, err)
	}
	if req.Limit < 0 {
		return writeErr(c, newInvalidRequest("limit", "limit must be a non-negative integer"))
	}
	p, values, err := s.column(rec, c.Param("param"), req.Limit, req.Sampled)
	if err != nil {
		return writeErr(c, err)
	}

	// The full column drives estimation so sampling does not move T.
	full := rec.File.Events.Column(p.Index - 1)
	resp, err := s.transform(req.ParamOverrides, full, values, req.Bins, req.Inverse)
	if err != nil {
		return writeErr(c, err)
	}
	info := parameterInfo(rec.File, p)
	resp.FileID = rec.ID
	resp.Parameter = &info
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleHyperlog(c *echo.Context) error {
	req, err := decodeBody[HyperlogReq](c)
	if err != nil {
		return writeErr(c, err)
	}
	resp, err := s.transform(req.ParamOverrides, req.Values, req.Values, req.Bins, req.Inverse)
	if err != nil {
		return writeErr(c, err)
	}
	return writeJSON(c, http.StatusOK, resp)
}

// transform builds a Hyperlog from the overrides, estimating missing
// parameters from basis, and applies it to values.
func (s *Server) transform(o ParamOverrides, basis, values []float64, bins *int, inverse bool) (HyperlogResp, error) {
	params, estimated, err := s.resolveParams(o, basis)
	if err != nil {
		return HyperlogResp{}, err
	}
	n := s.bins
	if bins != nil {
		n = *bins
	}
	h, err := hyperlog.NewFromParams(params, hyperlog.WithBins(n))
	if err != nil {
		return HyperlogResp{}, err
	}

	direction := metrics.DirectionForward
	var out []float64
	if inverse {
		direction = metrics.DirectionInverse
		out = h.InverseTransform(values)
	} else {
		out = h.Transform(values)
	}
	s.metrics.ObserveHyperlog(direction, len(out))

	return HyperlogResp{
		Object:    "hyperlog.result",
		Params:    h.Params(),
		Estimated: estimated,
		Inverse:   inverse,
		Count:     len(out),
		Values:    out,
	}, nil
}

func (s *Server) resolveParams(o ParamOverrides, basis []float64) (hyperlog.Params, bool, error) {
	if o.complete() {
		return hyperlog.Params{T: *o.T, W: *o.W, M: *o.M, A: *o.A}, false, nil
	}
	if len(basis) == 0 {
		return hyperlog.Params{}, false, newInvalidRequest("values", "cannot estimate transform parameters without data")
	}
	m := s.decades
	if o.M != nil {
		m = *o.M
	}
	p := hyperlog.EstimateParamsDecades(basis, m)
	if o.T != nil {
		p.T = *o.T
	}
	if o.W != nil {
		p.W = *o.W
	}
	if o.A != nil {
		p.A = *o.A
	}
	return p, true, nil
}

// decodeBody decodes a JSON request body. An empty body yields the zero T.
func decodeBody[T any](c *echo.Context) (T, error) {
	var zero T
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxJSONBody+1))
	if err != nil {
		return zero, newInvalidRequest("", "unable to read request body")
	}
	if len(body) > maxJSONBody {
		return zero, fmt.Errorf("%w: request body exceeds %d bytes", source.ErrTooLarge, maxJSONBody)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, nil
	}
	out, err := decodeJSON[T](bytes.NewReader(body))
	if err != nil {
		return zero, newInvalidRequest("", "invalid JSON body: "+err.Error())
	}
	return out, nil
}
