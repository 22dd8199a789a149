// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package profdata implements the trace data model and aggregation
// engine: the entity graph, the lazy invalidation protocol, and the
// ingestion facade that interns entities by key as part records
// arrive.
package profdata // import "github.com/kevleyski/traceprof/profdata"

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/metric"
)

// bgCtx backs internal recompute paths (e.g. cycle-base comparisons)
// that have no caller-supplied context to thread through.
var bgCtx = context.Background()

// Data is the whole ingested dataset: the root owner of every Part,
// Object, File, Class, Function, and FunctionCycle (§3.4). It is the
// top of the lazy aggregate chain — its own totals are a dirty-flagged
// sum over active parts' totals vectors.
type Data struct {
	lazyBase

	id uuid.UUID

	Catalogue *metric.Catalogue

	command string

	parts         []*Part
	maxThreadID   int
	maxPartNumber int

	objectsByName  map[string]*Object
	filesByName    map[string]*File
	classesByName  map[string]*Class
	functionsByKey map[uint64]*Function
	sourcesByKey   map[uint64]*FunctionSource
	callsByKey     map[uint64]*Call

	compressedObjects   map[int]*Object
	compressedFiles     map[int]*File
	compressedFunctions map[int]*Function

	globalClass *Class // the class a bare (unqualified) function name maps to

	cycles                 []*FunctionCycle
	inFunctionCycleUpdate bool

	self costval.CostVector

	listener ProgressListener

	searchCache *searchCache

	partFunctionPool  *pool[PartFunction]
	partInstrPool     *pool[PartInstr]
	partLinePool      *pool[PartLine]
	partObjectPool    *pool[PartObject]
	partFilePool      *pool[PartFile]
	partClassPool     *pool[PartClass]
	partCallPool      *pool[PartCall]
	partInstrJumpPool *pool[PartInstrJump]
	partLineJumpPool  *pool[PartLineJump]
	partInstrCallPool *pool[PartInstrCall]
	partLineCallPool  *pool[PartLineCall]
}

// NewData constructs an empty dataset with the given metric catalogue.
// A UUID identifies the instance (see ID), per §9's "session identity"
// convention.
func NewData(cat *metric.Catalogue) *Data {
	if cat == nil {
		cat = metric.NewCatalogue()
	}
	d := &Data{
		lazyBase:            newLazyBase(),
		id:                  uuid.New(),
		Catalogue:           cat,
		objectsByName:       make(map[string]*Object),
		filesByName:         make(map[string]*File),
		classesByName:       make(map[string]*Class),
		functionsByKey:      make(map[uint64]*Function),
		sourcesByKey:        make(map[uint64]*FunctionSource),
		callsByKey:          make(map[uint64]*Call),
		compressedObjects:   make(map[int]*Object),
		compressedFiles:     make(map[int]*File),
		compressedFunctions: make(map[int]*Function),
		listener:            NoopListener{},
		searchCache:         newSearchCache(),
		partFunctionPool:    newPool[PartFunction](),
		partInstrPool:       newPool[PartInstr](),
		partLinePool:        newPool[PartLine](),
		partObjectPool:      newPool[PartObject](),
		partFilePool:        newPool[PartFile](),
		partClassPool:       newPool[PartClass](),
		partCallPool:        newPool[PartCall](),
		partInstrJumpPool:   newPool[PartInstrJump](),
		partLineJumpPool:    newPool[PartLineJump](),
		partInstrCallPool:   newPool[PartInstrCall](),
		partLineCallPool:    newPool[PartLineCall](),
	}
	d.globalClass = d.cls("")
	return d
}

func (d *Data) Kind() Kind { return KindData }

// ID returns this dataset's session UUID.
func (d *Data) ID() uuid.UUID { return d.id }

// SetListener installs a ProgressListener; pass NoopListener{} (the
// default) to stop receiving callbacks.
func (d *Data) SetListener(l ProgressListener) {
	if l == nil {
		l = NoopListener{}
	}
	d.listener = l
}

// Command returns the profiled command line. No method of Data takes a
// part's `cmd` header field, so nothing sets it and it reads as "".
func (d *Data) Command() string { return d.command }

// MaxThreadID and MaxPartNumber return the highest thread id / part
// number seen across all ingested parts.
func (d *Data) MaxThreadID() int {
	max := 0
	for _, p := range d.parts {
		if p.ThreadID > max {
			max = p.ThreadID
		}
	}
	return max
}
func (d *Data) MaxPartNumber() int { return d.maxPartNumber }

// Parts returns every ingested Part, in ingestion order.
func (d *Data) Parts() []*Part { return d.parts }

func hashKey(fields ...string) uint64 {
	var buf []byte
	for _, f := range fields {
		buf = append(buf, f...)
		buf = append(buf, 0)
	}
	return xxh3.Hash(buf)
}

// object interns (or looks up) an Object by its full name.
func (d *Data) object(name string) *Object {
	if o, ok := d.objectsByName[name]; ok {
		return o
	}
	o := &Object{lazyCostList: newLazyCostList[*PartObject](), Name: name}
	d.objectsByName[name] = o
	return o
}

// file interns (or looks up) a File by its full name.
func (d *Data) file(name string) *File {
	if f, ok := d.filesByName[name]; ok {
		return f
	}
	f := &File{lazyCostList: newLazyCostList[*PartFile](), Name: name}
	d.filesByName[name] = f
	return f
}

// cls interns (or looks up) a Class by its full qualified name (e.g.
// "kio::Slave"). It takes no short-name output parameter: display-name
// policy is a GUI concern (§1).
func (d *Data) cls(fqName string) *Class {
	if c, ok := d.classesByName[fqName]; ok {
		return c
	}
	c := &Class{lazyCostList: newLazyCostList[*PartClass](), Name: fqName}
	d.classesByName[fqName] = c
	return c
}

// Object, File, Cls are the public create-or-lookup surface (§4.7).
func (d *Data) Object(name string) *Object { return d.object(name) }
func (d *Data) File(name string) *File     { return d.file(name) }
func (d *Data) Cls(fqName string) *Class   { return d.cls(fqName) }

// classOfFunction derives a function's class from the "A::B" prefix of
// its name, split on the last "::" before the signature — an empty
// prefix maps to the global pseudo-class (§4.7, scenario S5).
func classOfFunction(name string) string {
	// Find the last "::" that occurs before any "(" (the start of the
	// call signature, if present): scenario S5 requires
	// "kio::Slave::send(int)" to split into class "kio::Slave", not
	// "kio::Slave::send".
	sigStart := len(name)
	if i := indexByte(name, '('); i >= 0 {
		sigStart = i
	}
	lastSep := -1
	for i := 0; i+1 < sigStart; i++ {
		if name[i] == ':' && name[i+1] == ':' {
			lastSep = i
		}
	}
	if lastSep < 0 {
		return ""
	}
	return name[:lastSep]
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// function interns (or looks up) a Function by its (name, file,
// object) identity, deriving its class from the name (§4.7). A lookup
// against an existing record whose class/file/object differ from the
// ones supplied fails with IdentityConflict.
func (d *Data) function(name string, file *File, object *Object) (*Function, error) {
	className := classOfFunction(name)
	class := d.cls(className)

	fileName := ""
	if file != nil {
		fileName = file.Name
	}
	objectName := ""
	if object != nil {
		objectName = object.Name
	}
	key := hashKey(name, class.Name, fileName, objectName)

	if f, ok := d.functionsByKey[key]; ok {
		if f.class != class || f.file != file || f.object != object {
			return nil, newError(IdentityConflict, "", name, nil)
		}
		return f, nil
	}

	f := &Function{
		lazyCostList: newLazyCostList[*PartFunction](),
		Name:         name,
		class:        class,
		file:         file,
		object:       object,
		data:         d,
		instrs:       make(map[uint64]*Instr),
	}
	d.functionsByKey[key] = f
	class.functions = append(class.functions, f)
	if file != nil {
		file.functions = append(file.functions, f)
	}
	if object != nil {
		object.functions = append(object.functions, f)
	}
	return f, nil
}

// Function is the public create-or-lookup surface for function.
func (d *Data) Function(name string, file *File, object *Object) (*Function, error) {
	return d.function(name, file, object)
}

// functionSource interns (or looks up) the (Function, File) pair that
// identifies an inlined source location.
func (d *Data) functionSource(fn *Function, file *File) *FunctionSource {
	fileName := ""
	if file != nil {
		fileName = file.Name
	}
	key := hashKey(fmt.Sprintf("%p", fn), fileName)
	if fs, ok := d.sourcesByKey[key]; ok {
		return fs
	}
	fs := &FunctionSource{fn: fn, file: file, lines: make(map[int]*Line)}
	d.sourcesByKey[key] = fs
	fn.sources = append(fn.sources, fs)
	return fs
}

// call interns (or looks up) the Call edge for one caller→callee pair.
func (d *Data) call(caller, called *Function) *Call {
	key := hashKey(fmt.Sprintf("%p", caller), fmt.Sprintf("%p", called))
	if c, ok := d.callsByKey[key]; ok {
		return c
	}
	c := &Call{lazyCostList: newLazyCostList[*PartCall](), Caller: caller, Called: called}
	d.callsByKey[key] = c
	caller.outgoing = append(caller.outgoing, c)
	called.incoming = append(called.incoming, c)
	return c
}

// Call is the public create-or-lookup surface for call.
func (d *Data) Call(caller, called *Function) *Call { return d.call(caller, called) }

// instr interns (or looks up) the Instr at addr within fn.
func (d *Data) instr(fn *Function, addr uint64) *Instr {
	if i, ok := fn.instrs[addr]; ok {
		return i
	}
	i := &Instr{lazyCostList: newLazyCostList[*PartInstr](), Addr: addr, fn: fn}
	fn.instrs[addr] = i
	return i
}

// line interns (or looks up) the Line at lineno within fs.
func (d *Data) line(fs *FunctionSource, lineno int) *Line {
	if l, ok := fs.lines[lineno]; ok {
		return l
	}
	l := &Line{lazyCostList: newLazyCostList[*PartLine](), Lineno: lineno, source: fs}
	fs.lines[lineno] = l
	return l
}

// compressedObject resolves a compressed id token against name (per
// §4.7): "(N)" alone (name == "") refers to the entity N is already
// bound to, failing with InconsistentCompressedID if N is unbound;
// "(N) name" (name != "") binds N to name, failing with
// InconsistentCompressedID if N was already bound to a different name.
func (d *Data) compressedObject(n int, name string) (*Object, error) {
	if existing, ok := d.compressedObjects[n]; ok {
		if name != "" && existing.Name != name {
			return nil, newError(InconsistentCompressedID, "", fmt.Sprintf("(%d) %s", n, name), nil)
		}
		return existing, nil
	}
	if name == "" {
		return nil, newError(InconsistentCompressedID, "", fmt.Sprintf("(%d)", n), nil)
	}
	o := d.object(name)
	d.compressedObjects[n] = o
	return o, nil
}

func (d *Data) compressedFile(n int, name string) (*File, error) {
	if existing, ok := d.compressedFiles[n]; ok {
		if name != "" && existing.Name != name {
			return nil, newError(InconsistentCompressedID, "", fmt.Sprintf("(%d) %s", n, name), nil)
		}
		return existing, nil
	}
	if name == "" {
		return nil, newError(InconsistentCompressedID, "", fmt.Sprintf("(%d)", n), nil)
	}
	f := d.file(name)
	d.compressedFiles[n] = f
	return f, nil
}

func (d *Data) compressedFunction(n int, name string, file *File, object *Object) (*Function, error) {
	if existing, ok := d.compressedFunctions[n]; ok {
		if name != "" && existing.Name != name {
			return nil, newError(InconsistentCompressedID, "", fmt.Sprintf("(%d) %s", n, name), nil)
		}
		return existing, nil
	}
	if name == "" {
		return nil, newError(InconsistentCompressedID, "", fmt.Sprintf("(%d)", n), nil)
	}
	fn, err := d.function(name, file, object)
	if err != nil {
		return nil, err
	}
	d.compressedFunctions[n] = fn
	return fn, nil
}

// CompressedObject, CompressedFile, CompressedFunction are the public
// surface for the compressed on-disk id forms.
func (d *Data) CompressedObject(n int, name string) (*Object, error) { return d.compressedObject(n, name) }
func (d *Data) CompressedFile(n int, name string) (*File, error)     { return d.compressedFile(n, name) }
func (d *Data) CompressedFunction(n int, name string, file *File, object *Object) (*Function, error) {
	return d.compressedFunction(n, name, file, object)
}

// addPart creates a new Part, records its provenance, and returns it
// along with the listener's OnPartLoaded cancel signal. Per §6.3 the
// caller driving ingestion (not addPart itself) is responsible for
// honoring cancel at the next part boundary, the same division of
// labor updateFunctionCycles uses for OnCycleDetected.
func (d *Data) addPart(ctx context.Context, dir, filename string) (*Part, bool) {
	p := newPart(dir, filename)
	p.Number = len(d.parts) + 1
	d.parts = append(d.parts, p)
	if p.ThreadID > d.maxThreadID {
		d.maxThreadID = p.ThreadID
	}
	if p.Number > d.maxPartNumber {
		d.maxPartNumber = p.Number
	}
	d.markDirty()
	d.searchCache.Purge()
	cancel := false
	if d.listener != nil {
		cancel = d.listener.OnPartLoaded(p)
	}
	return p, cancel
}

// AddPart is the public surface for addPart. cancel reports the
// listener's OnPartLoaded return; a caller running a multi-part ingest
// loop should stop starting new parts once cancel is true.
func (d *Data) AddPart(ctx context.Context, dir, filename string) (part *Part, cancel bool) {
	return d.addPart(ctx, dir, filename)
}

// EnsureClean recomputes Data's own totals if dirty: the sum of active
// parts' pre-computed totals vectors.
func (d *Data) EnsureClean() {
	if !d.dirty {
		return
	}
	d.self.Zero()
	for _, p := range d.parts {
		if !p.Active {
			continue
		}
		d.self.AddVector(&p.Totals)
	}
	d.dirty = false
}

// Totals returns the clean dynamic totals vector.
func (d *Data) Totals() *costval.CostVector {
	d.EnsureClean()
	return &d.self
}

// ActivateParts sets Active = active on every part in list, returning
// true iff any part's state actually changed (§4.8, invariant 6). It
// does not itself invalidate dynamic aggregates — call
// InvalidateDynamicCost afterward if you care about them.
func (d *Data) ActivateParts(list []*Part, active bool) bool {
	changed := false
	for _, p := range list {
		if p.SetActive(active) {
			changed = true
		}
	}
	return changed
}

// InvalidateDynamicCost marks every Function (and, transitively, their
// owned Instrs/Lines/Jumps/Calls and containing Class/File/Object/Data)
// dirty. Primitive part-scoped costs are never invalidated (§4.8). It
// marks them unconditionally, whether or not any part's active state
// changed since the last call.
func (d *Data) InvalidateDynamicCost() {
	for _, f := range d.functionsByKey {
		f.markDirty()
		for _, instr := range f.instrs {
			instr.markDirty()
			for _, j := range instr.jumps {
				j.markDirty()
			}
			for _, c := range instr.calls {
				c.markDirty()
			}
		}
		for _, fs := range f.sources {
			for _, ln := range fs.lines {
				ln.markDirty()
				for _, j := range ln.jumps {
					j.markDirty()
				}
				for _, c := range ln.calls {
					c.markDirty()
				}
			}
		}
		for _, call := range f.outgoing {
			call.markDirty()
		}
	}
	d.markDirty()
	d.searchCache.Purge()
}

// UpdateFunctionCycles runs cycle detection (§4.9) and returns the
// discovered FunctionCycles.
func (d *Data) UpdateFunctionCycles(ctx context.Context) []*FunctionCycle {
	d.updateFunctionCycles(ctx)
	return d.cycles
}

// Cycles returns the most recently detected FunctionCycles.
func (d *Data) Cycles() []*FunctionCycle { return d.cycles }

// ObjectMap, FileMap, ClassMap, FunctionMap return the interned
// entities as Go maps (§6.2); they are not ordered. Map iteration order is not stable
// across calls; callers needing determinism should sort by Name.
func (d *Data) ObjectMap() map[string]*Object     { return d.objectsByName }
func (d *Data) FileMap() map[string]*File         { return d.filesByName }
func (d *Data) ClassMap() map[string]*Class       { return d.classesByName }
func (d *Data) FunctionMap() map[uint64]*Function { return d.functionsByKey }
