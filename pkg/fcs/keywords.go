package fcs

import (
	"iter"
	"strconv"
	"strings"
)

// Keyword is one key/value pair from the TEXT segment.
type Keyword struct {
	Key   string
	Value string
}

// Keywords is the ordered keyword table of a file. Standard keywords (those
// starting with '$') are matched case-insensitively; custom keywords are
// matched exactly. Keys keep the case they had in the file.
type Keywords struct {
	entries []Keyword
	index   map[string]int
}

func newKeywords(capacity int) *Keywords {
	return &Keywords{
		entries: make([]Keyword, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// IsStandard reports whether key names an FCS standard keyword.
func IsStandard(key string) bool {
	return strings.HasPrefix(key, "$")
}

func lookupKey(key string) string {
	if IsStandard(key) {
		return strings.ToUpper(key)
	}
	return key
}

// set stores a pair and reports whether the key was already present. The
// last value wins but the first position is kept.
func (k *Keywords) set(key, value string) bool {
	lk := lookupKey(key)
	if i, ok := k.index[lk]; ok {
		k.entries[i].Value = value
		return true
	}
	k.index[lk] = len(k.entries)
	k.entries = append(k.entries, Keyword{Key: key, Value: value})
	return false
}

// Len returns the number of distinct keywords.
func (k *Keywords) Len() int {
	return len(k.entries)
}

// Get returns the value stored for key.
func (k *Keywords) Get(key string) (string, bool) {
	i, ok := k.index[lookupKey(key)]
	if !ok {
		return "", false
	}
	return k.entries[i].Value, true
}

// Value returns the value stored for key or "" if absent.
func (k *Keywords) Value(key string) string {
	v, _ := k.Get(key)
	return v
}

// Has reports whether key is present.
func (k *Keywords) Has(key string) bool {
	_, ok := k.index[lookupKey(key)]
	return ok
}

// Int64 parses the value of key as a base-10 integer.
func (k *Keywords) Int64(key string) (int64, bool) {
	v, ok := k.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Int is Int64 for values that fit in an int.
func (k *Keywords) Int(key string) (int, bool) {
	n, ok := k.Int64(key)
	return int(n), ok
}

// Float64 parses the value of key as a floating point number.
func (k *Keywords) Float64(key string) (float64, bool) {
	v, ok := k.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MustInt64 is Int64 returning a *MissingKeywordError when the key is absent
// or not an integer.
func (k *Keywords) MustInt64(key string) (int64, error) {
	v, ok := k.Get(key)
	if !ok {
		return 0, &MissingKeywordError{Key: key}
	}
	n, ok := k.Int64(key)
	if !ok {
		return 0, &MissingKeywordError{Key: key, Value: v}
	}
	return n, nil
}

// MustString returns the value of key or a *MissingKeywordError.
func (k *Keywords) MustString(key string) (string, error) {
	v, ok := k.Get(key)
	if !ok {
		return "", &MissingKeywordError{Key: key}
	}
	return v, nil
}

// Keys returns all keys in file order.
func (k *Keywords) Keys() []string {
	keys := make([]string, len(k.entries))
	for i, e := range k.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of all pairs in file order.
func (k *Keywords) Entries() []Keyword {
	out := make([]Keyword, len(k.entries))
	copy(out, k.entries)
	return out
}

// Standard returns the standard ($-prefixed) pairs in file order.
func (k *Keywords) Standard() []Keyword {
	return k.filter(true)
}

// Custom returns the non-standard pairs in file order.
func (k *Keywords) Custom() []Keyword {
	return k.filter(false)
}

func (k *Keywords) filter(standard bool) []Keyword {
	var out []Keyword
	for _, e := range k.entries {
		if IsStandard(e.Key) == standard {
			out = append(out, e)
		}
	}
	return out
}

// All iterates over the pairs in file order.
func (k *Keywords) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range k.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}
