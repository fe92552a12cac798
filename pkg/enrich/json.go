package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// CategoryKey returns the JSON key of category cat. Categories named like
// RankField, optionally already prefixed with underscores, gain one more
// underscore so they never collide with the score. [CategoryName] reverses it.
func CategoryKey(cat string) string {
	if isRankLike(cat) {
		return "_" + cat
	}
	return cat
}

// CategoryName reverses [CategoryKey].
func CategoryName(key string) string {
	if strings.HasPrefix(key, "_") && isRankLike(key) {
		return key[1:]
	}
	return key
}

func isRankLike(s string) bool {
	return strings.TrimLeft(s, "_") == RankField
}

// MarshalJSON encodes the entry as {"rank": r, category: pct, ...} with
// categories sorted by name.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + RankField + `":`)
	if err := writeValue(&buf, e.Rank); err != nil {
		return nil, err
	}
	for _, cat := range slices.Sorted(maps.Keys(e.Categories)) {
		buf.WriteByte(',')
		if err := writeKey(&buf, CategoryKey(cat)); err != nil {
			return nil, err
		}
		if err := writeValue(&buf, e.Categories[cat]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the flattened form written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	rank, ok := m[RankField]
	if !ok {
		return fmt.Errorf("entry without %q field", RankField)
	}
	delete(m, RankField)
	cats := make(map[string]float64, len(m))
	for k, v := range m {
		cats[CategoryName(k)] = v
	}
	*e = Entry{Rank: rank, Categories: cats}
	return nil
}

// MarshalJSON encodes the ranking as a JSON object whose keys keep rank
// order.
func (r Ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, e.ID); err != nil {
			return nil, err
		}
		if err := writeValue(&buf, e.Entry); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object written by MarshalJSON, preserving key
// order.
func (r *Ranking) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ranking: want object, got %v", tok)
	}

	var entries []Ranked
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ranking: want key, got %v", tok)
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("ranking: %s: %w", id, err)
		}
		entries = append(entries, Ranked{ID: id, Entry: e})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = Ranking{Entries: entries}
	return nil
}

func writeKey(buf *bytes.Buffer, k string) error {
	b, err := json.Marshal(k)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
