// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/elastic/go-freelru"

	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/internal/telemetry"
	"github.com/kevleyski/traceprof/metric"
)

// searchCacheCapacity bounds the bounded LRU behind Data.Search: the
// interactive re-querying pattern named in §5 ("query traffic
// afterward") is "same name/metric/parent tuple, repeatedly", which is
// exactly what a small LRU amortizes.
const searchCacheCapacity = 256

// searchKey is the cache key for one Search call: the matched entity
// set depends on dataset state too, so InvalidateDynamicCost and
// AddPart both purge the cache rather than try to key on a dataset
// generation counter. The record-level AddCost, AddCall and AddJump do
// not purge it.
type searchKey struct {
	kind     Kind
	query    string
	metricID metric.TypeID
	parent   *Function
}

// searchCache names the concrete LRU instantiation so Data's field
// declaration doesn't need to import the lru package itself.
type searchCache = lru.LRU[searchKey, *SearchHit]

func newSearchCache() *searchCache {
	c, err := lru.New[searchKey, *SearchHit](searchCacheCapacity, hashSearchKey)
	if err != nil {
		// Capacity is a compile-time constant known to be valid; this
		// can only fail if that invariant is broken.
		panic(fmt.Sprintf("profdata: building search cache: %v", err))
	}
	return c
}

func hashSearchKey(k searchKey) uint32 {
	return uint32(hashKey(k.kind.String(), k.query, strconv.Itoa(int(k.metricID)), fmt.Sprintf("%p", k.parent)))
}

// SearchHit is the result of a Search call: the matched entity (exactly
// one of the pointer fields is non-nil, tagged by Kind) plus the value
// it scored under the query metric (§4.10).
type SearchHit struct {
	Kind  Kind
	Value costval.SubCost

	Object   *Object
	File     *File
	Class    *Class
	Function *Function
	Instr    *Instr
	Line     *Line
	Call     *Call
}

// Search implements §4.10/§6.2's query surface: the entity of kind
// whose name matches nameQuery (case-insensitive substring; "" matches
// everything) and has the greatest value of mt. Instr, Line, and Call
// are only identified within a Function scope, so parent must be
// non-nil for those three kinds. Returns (nil, nil) on no match.
func (d *Data) Search(ctx context.Context, kind Kind, nameQuery string, mt *metric.MetricType, parent *Function) (*SearchHit, error) {
	if d.inFunctionCycleUpdate {
		telemetry.RecordReentryTrip(ctx, "search")
		return nil, newError(Reentry, "", "search during cycle update", ErrReentry)
	}
	switch kind {
	case KindInstr, KindLine, KindCall:
		if parent == nil {
			return nil, fmt.Errorf("profdata: search for kind %s requires a Function parent", kind)
		}
	}
	if mt == nil {
		return nil, fmt.Errorf("profdata: search requires a metric type")
	}

	key := searchKey{kind: kind, query: nameQuery, metricID: mt.ID(), parent: parent}
	if hit, ok := d.searchCache.Get(key); ok {
		telemetry.RecordCacheHit(ctx)
		return hit, nil
	}
	telemetry.RecordCacheMiss(ctx)

	hit := d.search(ctx, kind, nameQuery, mt, parent)
	d.searchCache.Add(key, hit)
	return hit, nil
}

func (d *Data) search(ctx context.Context, kind Kind, q string, mt *metric.MetricType, parent *Function) *SearchHit {
	switch kind {
	case KindObject:
		best, val, ok := bestMatchNamed(d.objectsByName, q, func(o *Object) costval.SubCost {
			return metric.Value(mt, o.Cost(ctx))
		})
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, Object: best}

	case KindFile:
		best, val, ok := bestMatchNamed(d.filesByName, q, func(f *File) costval.SubCost {
			return metric.Value(mt, f.Cost(ctx))
		})
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, File: best}

	case KindClass:
		best, val, ok := bestMatchNamed(d.classesByName, q, func(c *Class) costval.SubCost {
			return metric.Value(mt, c.Cost(ctx))
		})
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, Class: best}

	case KindFunction:
		best, val, ok := bestMatchSlice(functionValues(d.functionsByKey), func(f *Function) string { return f.Name }, q,
			func(f *Function) costval.SubCost { return metric.Value(mt, f.Cost(ctx)) })
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, Function: best}

	case KindInstr:
		instrs := instrValues(parent.instrs)
		best, val, ok := bestMatchSlice(instrs, func(i *Instr) string { return fmt.Sprintf("%x", i.Addr) }, q,
			func(i *Instr) costval.SubCost { return metric.Value(mt, i.Cost(ctx)) })
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, Instr: best}

	case KindLine:
		var lines []*Line
		for _, fs := range parent.sources {
			for _, ln := range fs.lines {
				lines = append(lines, ln)
			}
		}
		best, val, ok := bestMatchSlice(lines, func(l *Line) string { return strconv.Itoa(l.Lineno) }, q,
			func(l *Line) costval.SubCost { return metric.Value(mt, l.Cost(ctx)) })
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, Line: best}

	case KindCall:
		best, val, ok := bestMatchSlice(parent.outgoing, func(c *Call) string {
			if c.Called == nil {
				return ""
			}
			return c.Called.Name
		}, q, func(c *Call) costval.SubCost { return metric.Value(mt, c.Cost(ctx)) })
		if !ok {
			return nil
		}
		return &SearchHit{Kind: kind, Value: val, Call: best}

	default:
		return nil
	}
}

// bestMatchNamed scans a name-keyed map for the greatest-valued entry
// whose key contains query (case-insensitive).
func bestMatchNamed[T any](items map[string]*T, query string, value func(*T) costval.SubCost) (*T, costval.SubCost, bool) {
	qLower := strings.ToLower(query)
	var best *T
	var bestVal costval.SubCost
	found := false
	for name, it := range items {
		if query != "" && !strings.Contains(strings.ToLower(name), qLower) {
			continue
		}
		v := value(it)
		if !found || v > bestVal {
			best, bestVal, found = it, v, true
		}
	}
	return best, bestVal, found
}

// bestMatchSlice is bestMatchNamed's counterpart for entities that
// aren't stored in a name-keyed map (Function, Instr, Line, Call).
func bestMatchSlice[T any](items []*T, name func(*T) string, query string, value func(*T) costval.SubCost) (*T, costval.SubCost, bool) {
	qLower := strings.ToLower(query)
	var best *T
	var bestVal costval.SubCost
	found := false
	for _, it := range items {
		if query != "" && !strings.Contains(strings.ToLower(name(it)), qLower) {
			continue
		}
		v := value(it)
		if !found || v > bestVal {
			best, bestVal, found = it, v, true
		}
	}
	return best, bestVal, found
}

func functionValues(m map[uint64]*Function) []*Function {
	out := make([]*Function, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	return out
}

func instrValues(m map[uint64]*Instr) []*Instr {
	out := make([]*Instr, 0, len(m))
	for _, i := range m {
		out = append(out, i)
	}
	return out
}
