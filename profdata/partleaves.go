// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/metric"
)

// Part-scoped leaves are immutable once ingested (§3.6): they are
// updated eagerly as records arrive, never lazily, and never
// recomputed afterward. Each carries a back-pointer to its owning Part
// and to the global counterpart it contributes to.

// PartObject, PartFile, PartClass, PartFunction are the per-part self
// cost totals for an Object/File/Class/Function, accumulated as cost
// rows for that container arrive during ingestion of one part.
type PartObject struct {
	part *Part
	dep  *Object
	cost costval.CostVector
}

func (p *PartObject) leafPart() *Part                { return p.part }
func (p *PartObject) leafCost() *costval.CostVector  { return &p.cost }
func (p *PartObject) Dep() *Object                   { return p.dep }
func (p *PartObject) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

type PartFile struct {
	part *Part
	dep  *File
	cost costval.CostVector
}

func (p *PartFile) leafPart() *Part               { return p.part }
func (p *PartFile) leafCost() *costval.CostVector { return &p.cost }
func (p *PartFile) Dep() *File                    { return p.dep }
func (p *PartFile) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

type PartClass struct {
	part *Part
	dep  *Class
	cost costval.CostVector
}

func (p *PartClass) leafPart() *Part               { return p.part }
func (p *PartClass) leafCost() *costval.CostVector { return &p.cost }
func (p *PartClass) Dep() *Class                   { return p.dep }
func (p *PartClass) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

type PartFunction struct {
	part *Part
	dep  *Function
	cost costval.CostVector
}

func (p *PartFunction) leafPart() *Part               { return p.part }
func (p *PartFunction) leafCost() *costval.CostVector { return &p.cost }
func (p *PartFunction) Dep() *Function                { return p.dep }
func (p *PartFunction) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

// PartInstr, PartLine are the per-part self cost at one instruction
// address / source line.
type PartInstr struct {
	part *Part
	dep  *Instr
	cost costval.CostVector
}

func (p *PartInstr) leafPart() *Part               { return p.part }
func (p *PartInstr) leafCost() *costval.CostVector { return &p.cost }
func (p *PartInstr) Dep() *Instr                   { return p.dep }
func (p *PartInstr) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

type PartLine struct {
	part *Part
	dep  *Line
	cost costval.CostVector
}

func (p *PartLine) leafPart() *Part               { return p.part }
func (p *PartLine) leafCost() *costval.CostVector { return &p.cost }
func (p *PartLine) Dep() *Line                    { return p.dep }
func (p *PartLine) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

// PartInstrJump, PartLineJump record a jump edge's per-part taken
// (executed) and non-fallthrough (followed) counts (§4.5). They are
// not cost-vector bearing.
type PartInstrJump struct {
	part     *Part
	dep      *InstrJump
	executed costval.SubCost
	followed costval.SubCost
}

func (p *PartInstrJump) leafPart() *Part { return p.part }
func (p *PartInstrJump) Dep() *InstrJump { return p.dep }

type PartLineJump struct {
	part     *Part
	dep      *LineJump
	executed costval.SubCost
	followed costval.SubCost
}

func (p *PartLineJump) leafPart() *Part { return p.part }
func (p *PartLineJump) Dep() *LineJump  { return p.dep }

// PartCall is the per-part cumulative cost and call count of one
// caller→callee edge.
type PartCall struct {
	part  *Part
	dep   *Call
	cost  costval.CostVector
	calls costval.SubCost
}

func (p *PartCall) leafPart() *Part               { return p.part }
func (p *PartCall) leafCost() *costval.CostVector { return &p.cost }
func (p *PartCall) Dep() *Call                    { return p.dep }
func (p *PartCall) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

// PartInstrCall, PartLineCall are the finer, address/line-scoped
// breakdown of a call's cost within one part.
type PartInstrCall struct {
	part *Part
	dep  *InstrCall
	cost costval.CostVector
}

func (p *PartInstrCall) leafPart() *Part               { return p.part }
func (p *PartInstrCall) leafCost() *costval.CostVector { return &p.cost }
func (p *PartInstrCall) Dep() *InstrCall               { return p.dep }
func (p *PartInstrCall) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}

type PartLineCall struct {
	part *Part
	dep  *LineCall
	cost costval.CostVector
}

func (p *PartLineCall) leafPart() *Part               { return p.part }
func (p *PartLineCall) leafCost() *costval.CostVector { return &p.cost }
func (p *PartLineCall) Dep() *LineCall                { return p.dep }
func (p *PartLineCall) addRow(sm *metric.SubMapping, fields []string) error {
	return p.cost.AddRow(sm, fields)
}
