package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Dimensions is an open-ended dimension-name -> value mapping identifying a
// combination (e.g. customer, circle, type). Identity is the canonical key,
// never positional matching.
type Dimensions map[string]string

// Key returns the canonical identity of the dimension set: keys sorted and
// joined as "key=value|key=value...". Two combinations are the same entity
// iff their keys match.
func (d Dimensions) Key() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(d[k])
	}
	return sb.String()
}

// ParseKey rebuilds a dimension map from a canonical key.
func ParseKey(key string) Dimensions {
	dims := Dimensions{}
	for _, kv := range strings.Split(key, "|") {
		if name, value, ok := strings.Cut(kv, "="); ok {
			dims[name] = value
		}
	}
	return dims
}

// IsDecom reports whether the combination represents decommissioning, i.e.
// its "type" dimension equals "Decom" in any case. Decommissioning volumes
// and base exit volumes are sign-inverted downstream.
func (d Dimensions) IsDecom() bool {
	return strings.EqualFold(strings.TrimSpace(d["type"]), "decom")
}

// normalizeDimName lowercases a dimension name and collapses '-'/'_' to
// spaces so uploads with varying separators match.
func normalizeDimName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// LockInMonths returns the contract lock-in period in months, read from a
// dimension whose normalized name is "lock in" or "lockin". Missing,
// non-numeric or non-positive values default to 1.
func (d Dimensions) LockInMonths() float64 {
	for k, v := range d {
		norm := normalizeDimName(k)
		if norm == "lock in" || norm == "lockin" {
			if lv, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && lv > 0 {
				return lv
			}
			return 1
		}
	}
	return 1
}

// PairMultiplier returns the fiber-pair multiplier, read from a dimension
// whose normalized name contains "pair". Missing, non-numeric or
// non-positive values default to 1.
func (d Dimensions) PairMultiplier() float64 {
	for k, v := range d {
		if strings.Contains(normalizeDimName(k), "pair") {
			if pv, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && pv > 0 {
				return pv
			}
			return 1
		}
	}
	return 1
}

// SiteType returns the value of the site-type dimension, if present, used by
// the passthrough OPEX rules.
func (d Dimensions) SiteType() string {
	for k, v := range d {
		norm := normalizeDimName(k)
		if norm == "site type" || norm == "sitetype" {
			return v
		}
	}
	return ""
}
