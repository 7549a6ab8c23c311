package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/ingest"
	"github.com/vegasq/insight/internal/logger"
	"github.com/vegasq/insight/internal/metrics"
	"github.com/vegasq/insight/query"
	"github.com/vegasq/insight/schema"
)

// Options configures a Service
type Options struct {
	// DataDir holds persisted datasets. Empty keeps datasets in memory only.
	DataDir  string
	Keywords query.Keywords
	Logger   logger.Logger
}

// Service owns the dataset lifecycle and answers queries against it
type Service struct {
	store   *dataset.Store
	persist *dataset.ParquetStore
	schemas *schema.Registry
	engine  *query.Engine
	log     logger.Logger

	// mu serializes add and remove so the file on disk and the published
	// snapshot change together
	mu sync.Mutex
}

// QueryResult is the output of a successful query
type QueryResult struct {
	Columns []string
	Rows    []map[string]interface{}
}

// New creates a service and loads every dataset persisted under
// opts.DataDir
func New(opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Keywords == (query.Keywords{}) {
		opts.Keywords = query.DefaultKeywords
	}

	s := &Service{
		store:   dataset.NewStore(),
		schemas: schema.DefaultRegistry(),
		log:     opts.Logger,
	}
	s.engine = query.NewEngine(s.store, s.schemas,
		query.WithLogger(opts.Logger.Zap()),
		query.WithKeywords(opts.Keywords))

	if opts.DataDir != "" {
		persist, err := dataset.NewParquetStore(opts.DataDir)
		if err != nil {
			return nil, err
		}
		s.persist = persist
		if err := s.reload(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// reload publishes every persisted dataset
func (s *Service) reload() error {
	all, err := s.persist.LoadAll()
	if err != nil {
		metrics.DatasetOperationsTotal.WithLabelValues("load", metrics.ResultError).Inc()
		return fmt.Errorf("failed to load datasets: %w", err)
	}
	for _, ds := range all {
		if err := s.store.Add(ds); err != nil {
			return err
		}
		metrics.DatasetOperationsTotal.WithLabelValues("load", metrics.ResultSuccess).Inc()
		metrics.DatasetRecords.WithLabelValues(ds.ID).Set(float64(len(ds.Records)))
		s.log.Info("dataset loaded", "id", ds.ID, "kind", string(ds.Kind), "rows", len(ds.Records))
	}
	s.updateActive()
	return nil
}

// AddDataset ingests content as a dataset of the named kind and returns the
// ids of all datasets afterwards
func (s *Service) AddDataset(id, kind string, content []byte) ([]string, error) {
	ids, err := s.addDataset(id, kind, content)
	if err != nil {
		metrics.DatasetOperationsTotal.WithLabelValues("add", metrics.ResultError).Inc()
		s.log.Warn("dataset add failed", "id", id, "kind", kind, "error", err)
		return nil, err
	}
	metrics.DatasetOperationsTotal.WithLabelValues("add", metrics.ResultSuccess).Inc()
	return ids, nil
}

func (s *Service) addDataset(id, kindName string, content []byte) ([]string, error) {
	if err := dataset.ValidateID(id); err != nil {
		return nil, err
	}
	kind, err := s.schemas.ParseKind(kindName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Has(id) {
		return nil, fmt.Errorf("%w: %q", dataset.ErrExists, id)
	}

	records, err := ingest.Parse(s.schemas, kind, content)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.New(id, kind, records)
	if err != nil {
		return nil, err
	}

	if s.persist != nil {
		if err := s.persist.Save(ds); err != nil {
			return nil, err
		}
	}
	if err := s.store.Add(ds); err != nil {
		return nil, err
	}

	metrics.DatasetRecords.WithLabelValues(id).Set(float64(len(records)))
	s.updateActive()
	s.log.Info("dataset added", "id", id, "kind", string(kind), "rows", len(records))
	return s.store.IDs(), nil
}

// RemoveDataset deletes the dataset id and returns its id
func (s *Service) RemoveDataset(id string) (string, error) {
	if err := s.removeDataset(id); err != nil {
		metrics.DatasetOperationsTotal.WithLabelValues("remove", metrics.ResultError).Inc()
		s.log.Warn("dataset remove failed", "id", id, "error", err)
		return "", err
	}
	metrics.DatasetOperationsTotal.WithLabelValues("remove", metrics.ResultSuccess).Inc()
	return id, nil
}

func (s *Service) removeDataset(id string) error {
	if err := dataset.ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.store.Lookup(id)
	if err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.Delete(ds.Kind, id); err != nil {
			return err
		}
	}
	if _, err := s.store.Remove(id); err != nil {
		return err
	}

	metrics.DatasetRecords.DeleteLabelValues(id)
	s.updateActive()
	s.log.Info("dataset removed", "id", id)
	return nil
}

// ListDatasets summarizes every loaded dataset, sorted by id
func (s *Service) ListDatasets() []dataset.Info {
	return s.store.List()
}

// PerformQuery validates and runs a decoded query document
func (s *Service) PerformQuery(doc interface{}) (*QueryResult, error) {
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	q, err := s.engine.Parse(doc)
	if err != nil {
		s.observeQuery(err, 0)
		return nil, err
	}
	rows, err := s.engine.Execute(q)
	s.observeQuery(err, len(rows))
	if err != nil {
		return nil, err
	}
	return &QueryResult{Columns: q.Columns, Rows: rows}, nil
}

// PerformQueryJSON decodes data and runs it as a query document
func (s *Service) PerformQueryJSON(data []byte) (*QueryResult, error) {
	doc, err := decodeQuery(data)
	if err != nil {
		s.observeQuery(err, 0)
		return nil, err
	}
	return s.PerformQuery(doc)
}

func (s *Service) observeQuery(err error, rows int) {
	switch {
	case err == nil:
		metrics.QueriesTotal.WithLabelValues(metrics.QueryOK).Inc()
		metrics.QueryResultRows.Observe(float64(rows))
	case errors.Is(err, query.ErrResultTooLarge):
		metrics.QueriesTotal.WithLabelValues(metrics.QueryTooLarge).Inc()
	default:
		metrics.QueriesTotal.WithLabelValues(metrics.QueryInvalid).Inc()
	}
}

// updateActive recounts the loaded datasets per kind
func (s *Service) updateActive() {
	counts := make(map[schema.Kind]int)
	for _, info := range s.store.List() {
		counts[info.Kind]++
	}
	for _, kind := range s.schemas.Kinds() {
		metrics.DatasetsActive.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}
