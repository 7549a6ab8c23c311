package query

import (
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vegasq/insight/schema"
)

// Engine validates and executes query documents against a dataset lookup
type Engine struct {
	datasets DatasetLookup
	schemas  *schema.Registry
	keywords Keywords
	logger   *zap.Logger
	parser   *Parser
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for query tracing
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithKeywords sets the structural keyword set of accepted documents
func WithKeywords(kw Keywords) Option {
	return func(e *Engine) {
		e.keywords = kw
	}
}

// NewEngine creates an engine over datasets. A nil schemas uses
// schema.DefaultRegistry.
func NewEngine(datasets DatasetLookup, schemas *schema.Registry, opts ...Option) *Engine {
	if schemas == nil {
		schemas = schema.DefaultRegistry()
	}
	e := &Engine{
		datasets: datasets,
		schemas:  schemas,
		keywords: DefaultKeywords,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.parser = NewParser(datasets, schemas, e.keywords)
	return e
}

// Keywords returns the keyword set the engine accepts
func (e *Engine) Keywords() Keywords {
	return e.keywords
}

// Parse validates doc without executing it
func (e *Engine) Parse(doc interface{}) (*Query, error) {
	return e.parser.Parse(doc)
}

// Run validates and executes doc, returning the ordered output rows
func (e *Engine) Run(doc interface{}) ([]map[string]interface{}, error) {
	q, err := e.Parse(doc)
	if err != nil {
		e.logger.Debug("query rejected", zap.Error(err))
		return nil, err
	}
	return e.Execute(q)
}

// RunJSON decodes data as a query document and runs it
func (e *Engine) RunJSON(data []byte) ([]map[string]interface{}, error) {
	if !gjson.ValidBytes(data) {
		return nil, invalidf("query is not valid JSON")
	}
	return e.Run(gjson.ParseBytes(data).Value())
}

// Execute runs a validated query against the dataset snapshot it was bound to.
//
// Execution order: filter, transform, row cap, projection, sort.
func (e *Engine) Execute(q *Query) ([]map[string]interface{}, error) {
	start := time.Now()

	records := ApplyFilter(q.Dataset.Records, q.Filter)

	var rows []map[string]interface{}
	if q.Transform != nil {
		rows = ApplyTransform(records, q.Transform)
	} else {
		rows = make([]map[string]interface{}, len(records))
		for i, r := range records {
			rows[i] = r
		}
	}

	if len(rows) > MaxResultRows {
		e.logger.Debug("query result too large",
			zap.String("dataset", q.DatasetID),
			zap.Int("rows", len(rows)))
		return nil, &ResultTooLargeError{Rows: len(rows), Limit: MaxResultRows}
	}

	rows = Project(rows, q.Columns)
	rows = ApplyOrder(rows, q.Order)

	e.logger.Debug("query executed",
		zap.String("dataset", q.DatasetID),
		zap.String("kind", string(q.Kind)),
		zap.Int("matched", len(records)),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)))
	return rows, nil
}
