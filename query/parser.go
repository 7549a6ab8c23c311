package query

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

// DatasetLookup resolves a dataset id to its current snapshot
type DatasetLookup interface {
	Lookup(id string) (*dataset.Dataset, error)
}

// fieldNeed is the field type a reference requires
type fieldNeed int

const (
	needAny fieldNeed = iota
	needNumeric
	needText
)

// fieldRef is a field reference collected while parsing, checked against the
// target schema once the dataset is known
type fieldRef struct {
	field Field
	need  fieldNeed
	where string
}

// Parser converts untyped query documents into validated queries
type Parser struct {
	keywords Keywords
	datasets DatasetLookup
	schemas  *schema.Registry
}

// NewParser creates a parser resolving datasets through datasets and field
// types through schemas
func NewParser(datasets DatasetLookup, schemas *schema.Registry, keywords Keywords) *Parser {
	return &Parser{keywords: keywords, datasets: datasets, schemas: schemas}
}

// parseState carries what one Parse call has collected so far
type parseState struct {
	refs  []fieldRef
	depth int
}

func (s *parseState) use(f Field, need fieldNeed, where string) {
	s.refs = append(s.refs, fieldRef{field: f, need: need, where: where})
}

// Parse validates doc and returns the query it describes. doc is the
// decoded JSON form: objects are map[string]interface{}, lists are
// []interface{} and numbers are float64 or json.Number.
//
// Parse either returns a complete query or a *ValidationError; it never
// evaluates anything.
func (p *Parser) Parse(doc interface{}) (*Query, error) {
	kw := p.keywords
	st := &parseState{}

	root, ok := asObject(doc)
	if !ok {
		if doc == nil {
			return nil, invalidf("query cannot be null")
		}
		if _, isList := asList(doc); isList {
			return nil, invalidf("query cannot be an array")
		}
		return nil, invalidf("query must be an object")
	}
	if _, ok := root[kw.Filter]; !ok {
		return nil, invalidf("query missing %s", kw.Filter)
	}
	if _, ok := root[kw.Options]; !ok {
		return nil, invalidf("query missing %s", kw.Options)
	}
	for _, key := range sortedKeys(root) {
		if key != kw.Filter && key != kw.Options && key != kw.Transform {
			return nil, invalidf("invalid key %q in query", key)
		}
	}

	q := &Query{}

	filter, err := p.parseRootFilter(st, root[kw.Filter])
	if err != nil {
		return nil, err
	}
	q.Filter = filter

	options, ok := asObject(root[kw.Options])
	if !ok {
		return nil, invalidf("%s must be an object", kw.Options)
	}
	columns, err := p.parseColumnList(options)
	if err != nil {
		return nil, err
	}

	if raw, present := root[kw.Transform]; present {
		t, err := p.parseTransform(st, raw)
		if err != nil {
			return nil, err
		}
		q.Transform = t
	}

	if err := p.resolveColumns(st, columns, q.Transform); err != nil {
		return nil, err
	}
	q.Columns = columns

	if raw, present := options[kw.Order]; present {
		order, err := p.parseOrder(raw, columns)
		if err != nil {
			return nil, err
		}
		q.Order = order
	}

	if err := p.bind(st, q); err != nil {
		return nil, err
	}
	return q, nil
}

// parseRootFilter parses the top-level filter, where {} means match-all
func (p *Parser) parseRootFilter(st *parseState, raw interface{}) (Filter, error) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, invalidf("%s must be an object", p.keywords.Filter)
	}
	if len(obj) == 0 {
		return MatchAll{}, nil
	}
	if len(obj) > 1 {
		return nil, invalidf("%s should have one key, got %d", p.keywords.Filter, len(obj))
	}
	return p.parseFilter(st, obj)
}

// parseFilter parses a nested filter node, which must have exactly one key
func (p *Parser) parseFilter(st *parseState, raw interface{}) (Filter, error) {
	st.depth++
	defer func() { st.depth-- }()
	if st.depth > MaxFilterDepth {
		return nil, invalidf("filter nesting too deep (max %d)", MaxFilterDepth)
	}

	obj, ok := asObject(raw)
	if !ok {
		return nil, invalidf("filter node must be an object")
	}
	if len(obj) != 1 {
		return nil, invalidf("filter node must have exactly one key, got %d", len(obj))
	}

	var key string
	for k := range obj {
		key = k
	}
	value := obj[key]

	switch key {
	case keyAnd, keyOr:
		children, err := p.parseFilterList(st, key, value)
		if err != nil {
			return nil, err
		}
		if key == keyAnd {
			return &And{Children: children}, nil
		}
		return &Or{Children: children}, nil

	case keyNot:
		child, err := p.parseFilter(st, value)
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil

	case string(OpLT), string(OpGT), string(OpEQ):
		return p.parseCompare(st, CompareOp(key), value)

	case keyIs:
		return p.parseMatch(st, value)

	default:
		return nil, invalidf("invalid filter key %q", key)
	}
}

func (p *Parser) parseFilterList(st *parseState, op string, raw interface{}) ([]Filter, error) {
	list, ok := asList(raw)
	if !ok {
		return nil, invalidf("%s must be an array", op)
	}
	if len(list) == 0 {
		return nil, invalidf("%s must be a non-empty array", op)
	}

	children := make([]Filter, 0, len(list))
	for _, item := range list {
		child, err := p.parseFilter(st, item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// singleEntry returns the only key/value pair of a comparison body
func singleEntry(op string, raw interface{}) (string, interface{}, error) {
	obj, ok := asObject(raw)
	if !ok {
		return "", nil, invalidf("%s must be an object", op)
	}
	if len(obj) != 1 {
		return "", nil, invalidf("%s should have exactly one key, got %d", op, len(obj))
	}
	for k, v := range obj {
		return k, v, nil
	}
	return "", nil, nil
}

func (p *Parser) parseCompare(st *parseState, op CompareOp, raw interface{}) (Filter, error) {
	key, value, err := singleEntry(string(op), raw)
	if err != nil {
		return nil, err
	}
	field, err := parseField(key, string(op))
	if err != nil {
		return nil, err
	}
	num, ok := asNumber(value)
	if !ok {
		return nil, invalidf("%s value for %s must be a number", op, key)
	}
	st.use(field, needNumeric, string(op))
	return &Compare{Op: op, Field: field, Value: num}, nil
}

func (p *Parser) parseMatch(st *parseState, raw interface{}) (Filter, error) {
	key, value, err := singleEntry(keyIs, raw)
	if err != nil {
		return nil, err
	}
	field, err := parseField(key, keyIs)
	if err != nil {
		return nil, err
	}
	pattern, ok := value.(string)
	if !ok {
		return nil, invalidf("%s value for %s must be a string", keyIs, key)
	}
	m, err := NewMatch(field, pattern)
	if err != nil {
		return nil, invalidf("%s: %v", keyIs, err)
	}
	st.use(field, needText, keyIs)
	return m, nil
}

// parseColumnList checks the options object and returns its column ids
func (p *Parser) parseColumnList(options map[string]interface{}) ([]string, error) {
	kw := p.keywords
	for _, key := range sortedKeys(options) {
		if key != kw.Columns && key != kw.Order {
			return nil, invalidf("%s must only have %s and %s keys, got %q", kw.Options, kw.Columns, kw.Order, key)
		}
	}

	raw, present := options[kw.Columns]
	if !present {
		return nil, invalidf("%s must include %s", kw.Options, kw.Columns)
	}
	columns, err := stringList(kw.Columns, raw)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, invalidf("%s must be a non-empty array", kw.Columns)
	}
	return columns, nil
}

// resolveColumns checks every column. Without a transform a column is a
// field reference; with one it must be a group key or an apply key.
func (p *Parser) resolveColumns(st *parseState, columns []string, t *Transform) error {
	kw := p.keywords
	for _, col := range columns {
		if strings.Count(col, "_") > 1 {
			return invalidf("column %q has more than one underscore", col)
		}
		if t == nil {
			field, err := parseField(col, kw.Columns)
			if err != nil {
				return err
			}
			st.use(field, needAny, kw.Columns)
			continue
		}
		if !t.hasColumn(col) {
			return invalidf("keys in %s must be in %s or %s when %s is present, got %q",
				kw.Columns, kw.Group, kw.Apply, kw.Transform, col)
		}
	}
	return nil
}

// hasColumn reports whether col names a group field or an apply key
func (t *Transform) hasColumn(col string) bool {
	for _, g := range t.Group {
		if g.String() == col {
			return true
		}
	}
	for _, rule := range t.Apply {
		if rule.Key == col {
			return true
		}
	}
	return false
}

func (p *Parser) parseOrder(raw interface{}, columns []string) (*Order, error) {
	kw := p.keywords
	inColumns := make(map[string]bool, len(columns))
	for _, col := range columns {
		inColumns[col] = true
	}

	if raw == nil {
		return nil, invalidf("%s cannot be null", kw.Order)
	}
	if key, ok := raw.(string); ok {
		if !inColumns[key] {
			return nil, invalidf("%s key %q must be in %s", kw.Order, key, kw.Columns)
		}
		return &Order{Dir: Up, Keys: []string{key}}, nil
	}

	obj, ok := asObject(raw)
	if !ok {
		return nil, invalidf("%s must be a string or an object", kw.Order)
	}
	if len(obj) != 2 {
		return nil, invalidf("%s must have exactly the keys %s and %s", kw.Order, orderDirKey, orderKeysKey)
	}
	rawDir, hasDir := obj[orderDirKey]
	rawKeys, hasKeys := obj[orderKeysKey]
	if !hasDir || !hasKeys {
		return nil, invalidf("%s must have exactly the keys %s and %s", kw.Order, orderDirKey, orderKeysKey)
	}

	order := &Order{}
	switch rawDir {
	case Up.String():
		order.Dir = Up
	case Down.String():
		order.Dir = Down
	default:
		return nil, invalidf("%s %s must be %s or %s", kw.Order, orderDirKey, Up, Down)
	}

	keys, err := stringList(orderKeysKey, rawKeys)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, invalidf("%s %s cannot be empty", kw.Order, orderKeysKey)
	}
	for _, key := range keys {
		if !inColumns[key] {
			return nil, invalidf("%s key %q must be in %s", kw.Order, key, kw.Columns)
		}
	}
	order.Keys = keys
	return order, nil
}

func (p *Parser) parseTransform(st *parseState, raw interface{}) (*Transform, error) {
	kw := p.keywords
	obj, ok := asObject(raw)
	if !ok {
		return nil, invalidf("%s must be an object", kw.Transform)
	}
	for _, key := range sortedKeys(obj) {
		if key != kw.Group && key != kw.Apply {
			return nil, invalidf("%s must only include %s and %s, got %q", kw.Transform, kw.Group, kw.Apply, key)
		}
	}

	rawGroup, present := obj[kw.Group]
	if !present {
		return nil, invalidf("%s must include a non-empty %s", kw.Transform, kw.Group)
	}
	groupKeys, err := stringList(kw.Group, rawGroup)
	if err != nil {
		return nil, err
	}
	if len(groupKeys) == 0 {
		return nil, invalidf("%s must include a non-empty %s", kw.Transform, kw.Group)
	}

	t := &Transform{}
	for _, key := range groupKeys {
		field, err := parseField(key, kw.Group)
		if err != nil {
			return nil, err
		}
		st.use(field, needAny, kw.Group)
		t.Group = append(t.Group, field)
	}

	rawApply, present := obj[kw.Apply]
	if !present {
		return nil, invalidf("%s must include %s", kw.Transform, kw.Apply)
	}
	rules, ok := asList(rawApply)
	if !ok {
		return nil, invalidf("%s must be an array", kw.Apply)
	}

	seen := make(map[string]bool, len(rules))
	for _, item := range rules {
		rule, err := p.parseApplyRule(st, item)
		if err != nil {
			return nil, err
		}
		if seen[rule.Key] {
			return nil, invalidf("duplicate %s key %q", kw.Apply, rule.Key)
		}
		seen[rule.Key] = true
		t.Apply = append(t.Apply, rule)
	}
	return t, nil
}

func (p *Parser) parseApplyRule(st *parseState, raw interface{}) (ApplyRule, error) {
	kw := p.keywords
	obj, ok := asObject(raw)
	if !ok {
		return ApplyRule{}, invalidf("%s rule must be an object", kw.Apply)
	}
	if len(obj) != 1 {
		return ApplyRule{}, invalidf("%s rule must have exactly one key, got %d", kw.Apply, len(obj))
	}

	var key string
	for k := range obj {
		key = k
	}
	if key == "" {
		return ApplyRule{}, invalidf("%s key cannot be empty", kw.Apply)
	}
	if strings.Contains(key, "_") {
		return ApplyRule{}, invalidf("%s key %q cannot contain an underscore", kw.Apply, key)
	}

	body, ok := asObject(obj[key])
	if !ok {
		return ApplyRule{}, invalidf("%s rule %q must be an object", kw.Apply, key)
	}
	if len(body) != 1 {
		return ApplyRule{}, invalidf("%s rule %q must have exactly one token, got %d", kw.Apply, key, len(body))
	}

	var token string
	for k := range body {
		token = k
	}
	op := ApplyOp(token)
	switch op {
	case AggMax, AggMin, AggAvg, AggCount, AggSum:
	default:
		return ApplyRule{}, invalidf("invalid apply token %q in rule %q", token, key)
	}

	target, ok := body[token].(string)
	if !ok {
		return ApplyRule{}, invalidf("%s rule %q field must be a string", kw.Apply, key)
	}
	field, err := parseField(target, token)
	if err != nil {
		return ApplyRule{}, err
	}

	need := needAny
	if op.numeric() {
		need = needNumeric
	}
	st.use(field, need, token)
	return ApplyRule{Key: key, Op: op, Field: field}, nil
}

// bind resolves the single dataset the query references and checks every
// collected field against that dataset's schema
func (p *Parser) bind(st *parseState, q *Query) error {
	var ids []string
	seen := make(map[string]bool)
	for _, ref := range st.refs {
		if !seen[ref.field.Dataset] {
			seen[ref.field.Dataset] = true
			ids = append(ids, ref.field.Dataset)
		}
	}
	if len(ids) != 1 {
		sort.Strings(ids)
		return invalidf("query must reference exactly one dataset, got %d %v", len(ids), ids)
	}
	id := ids[0]

	ds, err := p.datasets.Lookup(id)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			return invalidf("referenced dataset %q not added yet", id)
		}
		return invalidf("dataset %q: %v", id, err)
	}
	sch, err := p.schemas.Lookup(ds.Kind)
	if err != nil {
		return invalidf("dataset %q: %v", id, err)
	}

	for _, ref := range st.refs {
		if err := checkField(sch, ref); err != nil {
			return err
		}
	}

	q.DatasetID = id
	q.Kind = ds.Kind
	q.Dataset = ds
	return nil
}

func checkField(sch schema.Schema, ref fieldRef) error {
	name := ref.field.Name
	if !sch.HasField(name) {
		return invalidf("invalid key %q in %s: unknown %s field", ref.field, ref.where, sch.Kind())
	}
	switch ref.need {
	case needNumeric:
		if !sch.IsNumericField(name) {
			return invalidf("invalid key %q in %s: %s requires a numeric field", ref.field, ref.where, ref.where)
		}
	case needText:
		if !sch.IsTextField(name) {
			return invalidf("invalid key %q in %s: %s requires a text field", ref.field, ref.where, ref.where)
		}
	}
	return nil
}

// parseField splits a <dataset>_<field> reference
func parseField(s, where string) (Field, error) {
	parts := strings.Split(s, "_")
	switch {
	case len(parts) > 2:
		return Field{}, invalidf("invalid key %q in %s: more than one underscore", s, where)
	case len(parts) < 2:
		return Field{}, invalidf("invalid key %q in %s: expected <dataset>_<field>", s, where)
	case parts[0] == "":
		return Field{}, invalidf("invalid key %q in %s: missing dataset id", s, where)
	}
	return Field{Dataset: parts[0], Name: parts[1]}, nil
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	return obj, ok && obj != nil
}

func asList(v interface{}) ([]interface{}, bool) {
	switch list := v.(type) {
	case []interface{}:
		return list, true
	case []string:
		out := make([]interface{}, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// asNumber accepts the numeric forms a decoded document can hold
func asNumber(v interface{}) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	return toFloat64(v)
}

func stringList(name string, raw interface{}) ([]string, error) {
	list, ok := asList(raw)
	if !ok {
		return nil, invalidf("%s must be an array", name)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, invalidf("%s must only contain strings", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// sortedKeys returns the keys of obj in a stable order so the first reported
// violation does not depend on map iteration
func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
