package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is the canonical representation of list columns (image urls, attachments).
// It is written as a JSON array. Reads accept every encoding older rows may hold:
// a JSON array, a JSON string wrapping an array, or a comma-joined string.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	list, err := NormalizeStringList(value)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

// GormDBDataType picks the dialect JSON type (jsonb on postgres)
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSONSlice[string]{}.GormDBDataType(db, field)
}

// NormalizeStringList converts a raw column value into an ordered, non-nil list.
// JSON arrays come back exactly as stored; only the legacy comma-joined text is
// split, trimmed and stripped of blank entries.
func NormalizeStringList(value interface{}) (StringList, error) {
	var raw string
	switch v := value.(type) {
	case nil:
		return StringList{}, nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	case []string:
		return append(StringList{}, v...), nil
	default:
		return nil, fmt.Errorf("unsupported list value type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return StringList{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var arr datatypes.JSONSlice[string]
		if err := arr.Scan(raw); err == nil {
			return append(StringList{}, arr...), nil
		}
		// arrays of non-string scalars
		var loose []interface{}
		if err := json.Unmarshal([]byte(raw), &loose); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		out := make(StringList, 0, len(loose))
		for _, item := range loose {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	}

	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return NormalizeStringList(inner)
	}

	return compact(strings.Split(raw, ",")), nil
}

func compact(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
