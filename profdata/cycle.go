// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import "context"

// tarjanSCC runs Tarjan's strongly-connected-components algorithm over
// a graph described only by its node list and an edges callback — no
// analogue for this exists in the teacher or the rest of the retrieval
// pack, so it is implemented directly against the textbook algorithm
// (DESIGN.md records this as a stdlib-only, intentionally-grounded
// exception). Returned components are in discovery order; singleton
// components (no self-recursion) are included, callers filter by size.
func tarjanSCC[N comparable](nodes []N, edges func(N) []N) [][]N {
	var (
		index   int
		stack   []N
		onStack = make(map[N]bool, len(nodes))
		idx     = make(map[N]int, len(nodes))
		low     = make(map[N]int, len(nodes))
		visited = make(map[N]bool, len(nodes))
		result  [][]N
	)

	var strongconnect func(v N)
	strongconnect = func(v N) {
		idx[v] = index
		low[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true
		visited[v] = true

		for _, w := range edges(v) {
			if !visited[w] {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if idx[w] < low[v] {
					low[v] = idx[w]
				}
			}
		}

		if low[v] == idx[v] {
			var component []N
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			result = append(result, component)
		}
	}

	for _, n := range nodes {
		if !visited[n] {
			strongconnect(n)
		}
	}
	return result
}

// updateFunctionCycles runs Tarjan's SCC over the global call graph
// (nodes = Functions, edges = non-recursive Calls) and rebuilds the
// FunctionCycle list (§4.9). It is re-entrant-guarded: cost queries
// made while this is running (e.g. from a ProgressListener callback)
// would otherwise recurse into a half-rebuilt cycle graph.
func (d *Data) updateFunctionCycles(ctx context.Context) {
	if d.inFunctionCycleUpdate {
		return
	}
	d.inFunctionCycleUpdate = true
	defer func() { d.inFunctionCycleUpdate = false }()

	nodes := make([]*Function, 0, len(d.functionsByKey))
	for _, f := range d.functionsByKey {
		f.cycle = nil
		nodes = append(nodes, f)
	}

	components := tarjanSCC(nodes, func(f *Function) []*Function {
		var out []*Function
		for _, call := range f.outgoing {
			if call.Recursive() {
				continue
			}
			out = append(out, call.Called)
		}
		return out
	})

	d.cycles = d.cycles[:0]
	number := 0
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		number++
		fc := &FunctionCycle{Number: number, Members: members}
		fc.lazyCostList = newLazyCostList[*PartFunction]()
		fc.data = d
		fc.Name = "<cycle>"

		base := members[0]
		for _, m := range members[1:] {
			if betterCycleBase(ctx, m, base) {
				base = m
			}
		}
		fc.base = base

		for _, m := range members {
			m.cycle = fc
		}

		memberSet := make(map[*Function]bool, len(members))
		for _, m := range members {
			memberSet[m] = true
		}
		for _, m := range members {
			for _, call := range m.incoming {
				if !memberSet[call.Caller] {
					fc.incoming = append(fc.incoming, call)
				}
			}
			for _, call := range m.outgoing {
				if !memberSet[call.Called] {
					fc.outgoing = append(fc.outgoing, call)
				}
			}
		}

		d.cycles = append(d.cycles, fc)
		if d.listener != nil && d.listener.OnCycleDetected(fc) {
			// §6.3: a cancel is honored at the next polling boundary,
			// i.e. before the next cycle would be reported; cycles
			// already appended to d.cycles stay reported.
			break
		}
	}
}

// betterCycleBase reports whether candidate should replace current as
// a FunctionCycle's base: greatest inclusive cost in the primary
// metric (catalogue real index 0), tie-broken lexicographically by
// name (§4.9).
func betterCycleBase(ctx context.Context, candidate, current *Function) bool {
	cv := candidate.CumulativeCost(ctx)
	dv := current.CumulativeCost(ctx)
	cPrimary, dPrimary := cv.Get(0), dv.Get(0)
	if cPrimary != dPrimary {
		return cPrimary > dPrimary
	}
	return candidate.Name < current.Name
}

// DetectCycles runs the same Tarjan analysis over an arbitrary
// container-with-a-function-derived-call-graph, generalizing §4.9's
// "analogous SCC for Class, File, and Object" into one algorithm
// instead of four hand-copies. T is the container type (Class, File,
// Object); containerOf maps a Function to its owning container, and
// the returned map associates every container that participates in a
// cycle with the full member list of its cycle.
func DetectCycles[T comparable](nodes []T, containerOf func(*Function) T, allFunctions []*Function) map[T][]T {
	edgesByNode := make(map[T]map[T]bool, len(nodes))
	for _, n := range nodes {
		edgesByNode[n] = make(map[T]bool)
	}
	for _, f := range allFunctions {
		from := containerOf(f)
		// A Function with no container of this kind (e.g. object == nil)
		// maps to T's zero value, which isn't one of nodes: skip it
		// rather than write into edgesByNode[from], which would be nil.
		if _, ok := edgesByNode[from]; !ok {
			continue
		}
		for _, call := range f.outgoing {
			if call.Recursive() {
				continue
			}
			to := containerOf(call.Called)
			if from != to {
				edgesByNode[from][to] = true
			}
		}
	}

	edges := func(n T) []T {
		out := make([]T, 0, len(edgesByNode[n]))
		for to := range edgesByNode[n] {
			out = append(out, to)
		}
		return out
	}

	components := tarjanSCC(nodes, edges)
	result := make(map[T][]T)
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		for _, m := range members {
			result[m] = members
		}
	}
	return result
}
