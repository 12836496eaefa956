package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NotAvailable is the placeholder written for values that were not configured.
const NotAvailable = "N/A"

// Breakdown maps a category label to a rounded percentage.
type Breakdown map[string]float64

// Labels returns the breakdown labels in sorted order.
func (b Breakdown) Labels() []string {
	labels := make([]string, 0, len(b))
	for label := range b {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

type ResultEntry struct {
	Key   string
	Value any
}

// MetricResult is an insertion-ordered mapping from metric name to value.
// Values are int, int64, float64, string or Breakdown. Setting an existing
// key replaces its value in place, so the last write wins while the key
// keeps the position of its first write.
type MetricResult struct {
	entries []ResultEntry
	index   map[string]int
}

func NewMetricResult(entries ...ResultEntry) *MetricResult {
	r := &MetricResult{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		r.Set(e.Key, e.Value)
	}
	return r
}

// Set stores value under key and reports whether an earlier value was replaced.
func (r *MetricResult) Set(key string, value any) bool {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.entries[i].Value = value
		return true
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, ResultEntry{Key: key, Value: value})
	return false
}

func (r *MetricResult) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.entries[i].Value, true
}

// Merge copies every entry of other into r in order and returns the keys
// that overwrote an existing value.
func (r *MetricResult) Merge(other *MetricResult) []string {
	if other == nil {
		return nil
	}
	var overwritten []string
	for _, e := range other.entries {
		if r.Set(e.Key, e.Value) {
			overwritten = append(overwritten, e.Key)
		}
	}
	return overwritten
}

func (r *MetricResult) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

func (r *MetricResult) Entries() []ResultEntry {
	if r == nil {
		return nil
	}
	return append([]ResultEntry(nil), r.entries...)
}

func (r *MetricResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
// Floats always carry a fractional part so that they decode back as floats.
func (r *MetricResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := marshalJSONValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", e.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalJSONValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case int:
		return []byte(strconv.Itoa(val)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case float64:
		s, err := formatFloat(val)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	case string:
		return json.Marshal(val)
	case Breakdown:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, label := range val.Labels() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(label)
			if err != nil {
				return nil, err
			}
			pct, err := formatFloat(val[label])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.WriteString(pct)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("unsupported float value %v", f)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

// UnmarshalJSON reads a JSON object produced by MarshalJSON, keeping key order.
func (r *MetricResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	*r = MetricResult{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		value, err := unmarshalJSONValue(raw)
		if err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		r.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

func unmarshalJSONValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		err := json.Unmarshal(trimmed, &s)
		return s, err
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var m map[string]json.Number
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
		b := make(Breakdown, len(m))
		for label, n := range m {
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			b[label] = f
		}
		return b, nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, fmt.Errorf("unsupported value %s", trimmed)
		}
		return parseNumber(n.String())
	}
}

func parseNumber(s string) (any, error) {
	if strings.ContainsAny(s, ".eE") {
		return strconv.ParseFloat(s, 64)
	}
	return strconv.Atoi(s)
}

// MarshalYAML renders the entries as an ordered YAML mapping.
func (r *MetricResult) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range r.Entries() {
		value, err := yamlValueNode(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", e.Key, err)
		}
		node.Content = append(node.Content, yamlScalar("!!str", e.Key), value)
	}
	return node, nil
}

func yamlScalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlValueNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case int:
		return yamlScalar("!!int", strconv.Itoa(val)), nil
	case int64:
		return yamlScalar("!!int", strconv.FormatInt(val, 10)), nil
	case float64:
		s, err := formatFloat(val)
		if err != nil {
			return nil, err
		}
		return yamlScalar("!!float", s), nil
	case string:
		return yamlScalar("!!str", val), nil
	case Breakdown:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, label := range val.Labels() {
			pct, err := formatFloat(val[label])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, yamlScalar("!!str", label), yamlScalar("!!float", pct))
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// UnmarshalYAML reads a mapping produced by MarshalYAML, keeping key order.
func (r *MetricResult) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected YAML mapping at line %d", node.Line)
	}

	*r = MetricResult{index: make(map[string]int)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value, err := yamlNodeValue(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		r.Set(key, value)
	}
	return nil
}

func yamlNodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int":
			return strconv.Atoi(node.Value)
		case "!!float":
			return strconv.ParseFloat(node.Value, 64)
		case "!!str":
			return node.Value, nil
		default:
			return nil, fmt.Errorf("unsupported scalar %s at line %d", node.ShortTag(), node.Line)
		}
	case yaml.MappingNode:
		b := make(Breakdown, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var pct float64
			if err := node.Content[i+1].Decode(&pct); err != nil {
				return nil, err
			}
			b[node.Content[i].Value] = pct
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported node at line %d", node.Line)
	}
}

// MarshalValue encodes a single supported value as JSON.
func MarshalValue(v any) ([]byte, error) {
	return marshalJSONValue(v)
}

// UnmarshalValue decodes a value produced by MarshalValue.
func UnmarshalValue(data []byte) (any, error) {
	return unmarshalJSONValue(data)
}
