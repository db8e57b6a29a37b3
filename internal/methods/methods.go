// Package methods is the table of JSON-RPC methods the client knows: how each
// method's positional params are encoded and how its result is decoded. The
// request builder and the response decoder both read from it.
package methods

import (
	"sort"

	"ethwire/internal/format"
)

// Param describes one positional parameter. A trailing param that the caller
// omits is filled with Default when it has one, dropped when Optional, and
// otherwise reported as missing.
type Param struct {
	Name     string
	Codec    format.Codec
	Default  any
	Optional bool
}

// Method binds a method name to its parameter codecs and result codec.
type Method struct {
	Name   string
	Params []Param
	Result format.Codec
}

// Table maps method names and subscription types to codecs. It is populated
// before use and read concurrently afterwards.
type Table struct {
	methods map[string]Method
	subs    map[string]format.Codec
}

func NewTable() *Table {
	return &Table{
		methods: make(map[string]Method),
		subs:    make(map[string]format.Codec),
	}
}

// Register adds or replaces a method.
func (t *Table) Register(m Method) {
	t.methods[m.Name] = m
}

// RegisterSubscription sets the codec for eth_subscribe pushes of subType.
func (t *Table) RegisterSubscription(subType string, c format.Codec) {
	t.subs[subType] = c
}

func (t *Table) Lookup(name string) (Method, bool) {
	m, ok := t.methods[name]
	return m, ok
}

// Subscription returns the result codec for a subscription type.
func (t *Table) Subscription(subType string) (format.Codec, bool) {
	c, ok := t.subs[subType]
	return c, ok
}

// Names lists the registered methods, sorted.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.methods))
	for name := range t.methods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clone returns a table that can be extended without touching t.
func (t *Table) Clone() *Table {
	out := NewTable()
	for name, m := range t.methods {
		out.methods[name] = m
	}
	for sub, c := range t.subs {
		out.subs[sub] = c
	}
	return out
}
