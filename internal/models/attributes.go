package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AttributeSet is the attribute selection of a cart line, e.g. {"size":"M","color":"red"}.
// Two sets are the same line when they hold the same pairs, whatever their order.
type AttributeSet map[string]string

// Key renders the canonical form used for line identity. An empty set has key "".
func (a AttributeSet) Key() string {
	if len(a) == 0 {
		return ""
	}
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeAttr(k))
		b.WriteByte('=')
		b.WriteString(escapeAttr(a[k]))
	}
	return b.String()
}

func (a AttributeSet) Equal(other AttributeSet) bool {
	return a.Key() == other.Key()
}

var attrEscaper = strings.NewReplacer(`\`, `\\`, `&`, `\&`, `=`, `\=`)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func (a AttributeSet) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return json.Marshal(map[string]string(a))
}

func (a *AttributeSet) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("attribute set: unsupported type %T", value)
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*a = m
	return nil
}
