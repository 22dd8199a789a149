// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"github.com/sirupsen/logrus"

	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/internal/telemetry"
	"github.com/kevleyski/traceprof/metric"
)

// This file is the ingestion facade's record-level half (§6.1): the
// external parser tokenizes a part file and hands each record here
// already split into fields; this engine never reads raw bytes itself.
//
// A cost row lands against whichever context (ob=/fl=/fn=) is
// currently active; a call row lands against the (cob=/cfl=/cfn=)
// target. Per §7, a malformed record is skipped and reported —
// callers get an *Error wrapping ErrMalformedRecord and should log it
// through the ambient logger rather than abort ingestion.

// CostRecord is one parsed cost row (§6.1): optional instruction
// address and/or source line, plus the ASCII decimal fields to apply
// through sm.
type CostRecord struct {
	Addr   *uint64
	Line   *int
	Fields []string
}

// AddCost applies rec to fn within part, fanning the same values out
// to every scope the self cost is attributed to: the function's
// PartFunction total, its PartInstr/PartLine breakdown (if address or
// line information is present), and its declaring object/class/file
// totals.
func (d *Data) AddCost(part *Part, sm *metric.SubMapping, fn *Function, rec CostRecord) error {
	pf, ok := fn.findForPart(part)
	if !ok {
		pf = d.partFunctionPool.alloc()
		*pf = PartFunction{part: part, dep: fn}
		fn.addDep(pf)
	}
	if err := pf.addRow(sm, rec.Fields); err != nil {
		return d.malformed(part, rec.Fields, err)
	}

	if rec.Addr != nil {
		instr := d.instr(fn, *rec.Addr)
		pi, ok := instr.findForPart(part)
		if !ok {
			pi = d.partInstrPool.alloc()
			*pi = PartInstr{part: part, dep: instr}
			instr.addDep(pi)
		}
		if err := pi.addRow(sm, rec.Fields); err != nil {
			return d.malformed(part, rec.Fields, err)
		}
	}

	if rec.Line != nil {
		// Keyed on fn.file rather than a per-row file: CostRecord carries
		// no file field of its own (the external parser owns fl= context
		// and applies it before calling in), so a function inlining code
		// from more than one source file collapses onto fn.file here.
		fs := d.functionSource(fn, fn.file)
		ln := d.line(fs, *rec.Line)
		pl, ok := ln.findForPart(part)
		if !ok {
			pl = d.partLinePool.alloc()
			*pl = PartLine{part: part, dep: ln}
			ln.addDep(pl)
		}
		if err := pl.addRow(sm, rec.Fields); err != nil {
			return d.malformed(part, rec.Fields, err)
		}
	}

	if fn.object != nil {
		po, ok := fn.object.findForPart(part)
		if !ok {
			po = d.partObjectPool.alloc()
			*po = PartObject{part: part, dep: fn.object}
			fn.object.addDep(po)
		}
		_ = po.addRow(sm, rec.Fields)
	}
	if fn.file != nil {
		pfl, ok := fn.file.findForPart(part)
		if !ok {
			pfl = d.partFilePool.alloc()
			*pfl = PartFile{part: part, dep: fn.file}
			fn.file.addDep(pfl)
		}
		_ = pfl.addRow(sm, rec.Fields)
	}
	if fn.class != nil {
		pc, ok := fn.class.findForPart(part)
		if !ok {
			pc = d.partClassPool.alloc()
			*pc = PartClass{part: part, dep: fn.class}
			fn.class.addDep(pc)
		}
		_ = pc.addRow(sm, rec.Fields)
	}

	telemetry.RecordIngest(bgCtx, "ok")
	return nil
}

// malformed records a per-record ingest failure: logged and skipped
// per §7's record-level recovery policy, never fatal to the part.
func (d *Data) malformed(part *Part, fields []string, cause error) error {
	telemetry.RecordIngest(bgCtx, "malformed")
	logrus.WithFields(logrus.Fields{
		"part":   part.Filename,
		"record": fieldsString(fields),
	}).Warnf("profdata: skipping malformed cost record: %v", cause)
	return newError(MalformedRecord, part.Filename, fieldsString(fields), cause)
}

// CallRecord is one parsed call row (§6.1): the call count, optional
// call-site address/line, and the cumulative cost attributed through
// this edge.
type CallRecord struct {
	Calls  costval.SubCost
	Addr   *uint64
	Line   *int
	Fields []string
}

// AddCall applies rec to the caller→called edge within part, plus its
// call-site address/line breakdown into Call's owned InstrCall/LineCall
// lists (§4.5: "A Call aggregates (line-call-list, instr-call-list)").
func (d *Data) AddCall(part *Part, sm *metric.SubMapping, caller, called *Function, rec CallRecord) error {
	call := d.call(caller, called)
	pc, ok := call.findForPart(part)
	if !ok {
		pc = d.partCallPool.alloc()
		*pc = PartCall{part: part, dep: call}
		call.addDep(pc)
	}
	pc.calls = pc.calls.Add(rec.Calls)
	if err := pc.addRow(sm, rec.Fields); err != nil {
		return d.malformed(part, rec.Fields, err)
	}

	if rec.Addr != nil {
		instr := d.instr(caller, *rec.Addr)
		ic := findOrCreateInstrCall(call, instr)
		pic, ok := ic.findForPart(part)
		if !ok {
			pic = d.partInstrCallPool.alloc()
			*pic = PartInstrCall{part: part, dep: ic}
			ic.addDep(pic)
		}
		_ = pic.addRow(sm, rec.Fields)
	}

	if rec.Line != nil {
		// Same fn.file collapse as AddCost's line breakdown: CallRecord
		// has no per-row file field either.
		fs := d.functionSource(caller, caller.file)
		line := d.line(fs, *rec.Line)
		lc := findOrCreateLineCall(call, line)
		plc, ok := lc.findForPart(part)
		if !ok {
			plc = d.partLineCallPool.alloc()
			*plc = PartLineCall{part: part, dep: lc}
			lc.addDep(plc)
		}
		_ = plc.addRow(sm, rec.Fields)
	}

	return nil
}

func findOrCreateInstrCall(call *Call, instr *Instr) *InstrCall {
	for _, ic := range call.instrCalls {
		if ic.instr == instr {
			return ic
		}
	}
	ic := &InstrCall{lazyCostList: newLazyCostList[*PartInstrCall](), call: call, instr: instr}
	call.instrCalls = append(call.instrCalls, ic)
	instr.calls = append(instr.calls, ic)
	return ic
}

func findOrCreateLineCall(call *Call, line *Line) *LineCall {
	for _, lc := range call.lineCalls {
		if lc.line == line {
			return lc
		}
	}
	lc := &LineCall{lazyCostList: newLazyCostList[*PartLineCall](), call: call, line: line}
	call.lineCalls = append(call.lineCalls, lc)
	line.calls = append(line.calls, lc)
	return lc
}

// JumpRecord is one parsed jump row (§6.1): two intra-function
// endpoints, the conditional flag, and the taken/followed counts.
type JumpRecord struct {
	FromAddr      *uint64
	FromLine      *int
	ToAddr        *uint64
	ToLine        *int
	IsConditional bool
	Executed      costval.SubCost
	Followed      costval.SubCost
}

// AddJump applies rec within fn and part. Per open question (a), a
// Followed count exceeding Executed on a conditional jump is reported
// as MalformedRecord rather than silently clamped.
func (d *Data) AddJump(part *Part, fn *Function, rec JumpRecord) error {
	if rec.IsConditional && rec.Followed > rec.Executed {
		return newError(MalformedRecord, part.Filename, "jump followed > executed", nil)
	}

	if rec.FromAddr != nil && rec.ToAddr != nil {
		from := d.instr(fn, *rec.FromAddr)
		to := d.instr(fn, *rec.ToAddr)
		ij := findOrCreateInstrJump(from, to, rec.IsConditional)
		pij, ok := ij.findForPart(part)
		if !ok {
			pij = d.partInstrJumpPool.alloc()
			*pij = PartInstrJump{part: part, dep: ij}
			ij.addDep(pij)
		}
		pij.executed = pij.executed.Add(rec.Executed)
		pij.followed = pij.followed.Add(rec.Followed)
	}

	if rec.FromLine != nil && rec.ToLine != nil {
		fs := d.functionSource(fn, fn.file)
		from := d.line(fs, *rec.FromLine)
		to := d.line(fs, *rec.ToLine)
		lj := findOrCreateLineJump(from, to, rec.IsConditional)
		plj, ok := lj.findForPart(part)
		if !ok {
			plj = d.partLineJumpPool.alloc()
			*plj = PartLineJump{part: part, dep: lj}
			lj.addDep(plj)
		}
		plj.executed = plj.executed.Add(rec.Executed)
		plj.followed = plj.followed.Add(rec.Followed)
	}

	return nil
}

func findOrCreateInstrJump(from, to *Instr, isConditional bool) *InstrJump {
	for _, j := range from.jumps {
		if j.To == to {
			return j
		}
	}
	j := &InstrJump{lazyBase: newLazyBase(), From: from, To: to, IsConditional: isConditional}
	from.jumps = append(from.jumps, j)
	return j
}

func findOrCreateLineJump(from, to *Line, isConditional bool) *LineJump {
	for _, j := range from.jumps {
		if j.To == to {
			return j
		}
	}
	j := &LineJump{lazyBase: newLazyBase(), From: from, To: to, IsConditional: isConditional}
	from.jumps = append(from.jumps, j)
	return j
}

func fieldsString(fields []string) string {
	s := ""
	for i, f := range fields {
		if i > 0 {
			s += " "
		}
		s += f
	}
	return s
}
