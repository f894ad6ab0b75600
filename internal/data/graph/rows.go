package graph

import (
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// nodeProps unwraps a returned graph node into its property map. Rows
// that project bare values pass through untouched.
func nodeProps(v any) map[string]any {
	switch t := v.(type) {
	case dbtype.Node:
		return t.Props
	case map[string]any:
		return t
	default:
		return nil
	}
}

func propString(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	if s, ok := props[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// propTime normalizes the temporal shapes Neo4j hands back: driver
// datetimes arrive as time.Time, dates and local datetimes as dbtype
// wrappers, and seed data occasionally stores RFC 3339 strings.
func propTime(props map[string]any, key string) time.Time {
	if props == nil {
		return time.Time{}
	}
	switch t := props[key].(type) {
	case time.Time:
		return t
	case dbtype.Date:
		return t.Time()
	case dbtype.LocalDateTime:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func rowString(row map[string]any, key string) string {
	if row == nil {
		return ""
	}
	if s, ok := row[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
