package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ModuleFlags maps a module name to its enabled flag, stored as JSONB.
// A key can be absent for jamias created before the module existed; the
// guard decides what an absent key means.
type ModuleFlags map[string]bool

// Value implements driver.Valuer
func (m ModuleFlags) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *ModuleFlags) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// StringList is a JSONB-stored list of strings, used for per-user
// permission names.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type for JSONB scan: %T", value)
	}
}
