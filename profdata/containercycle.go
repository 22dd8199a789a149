// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

// ObjectCycle, FileCycle, ClassCycle record that a set of containers
// participate in a recursive cycle through their member Functions
// (§11's supplemented "Class/File/Object cycle detection"), built by
// DetectCycles rather than hand-copying Tarjan three more times.
type ObjectCycle struct{ Members []*Object }
type FileCycle struct{ Members []*File }
type ClassCycle struct{ Members []*Class }

// UpdateContainerCycles recomputes Object/File/Class cycle membership
// from the current Function call graph.
func (d *Data) UpdateContainerCycles() {
	functions := make([]*Function, 0, len(d.functionsByKey))
	for _, f := range d.functionsByKey {
		functions = append(functions, f)
	}

	objects := make([]*Object, 0, len(d.objectsByName))
	for _, o := range d.objectsByName {
		o.cycle = nil
		objects = append(objects, o)
	}
	objCycles := DetectCycles(objects, func(f *Function) *Object { return f.object }, functions)
	for o, members := range objCycles {
		o.cycle = &ObjectCycle{Members: members}
	}

	files := make([]*File, 0, len(d.filesByName))
	for _, f := range d.filesByName {
		f.cycle = nil
		files = append(files, f)
	}
	fileCycles := DetectCycles(files, func(f *Function) *File { return f.file }, functions)
	for fl, members := range fileCycles {
		fl.cycle = &FileCycle{Members: members}
	}

	classes := make([]*Class, 0, len(d.classesByName))
	for _, c := range d.classesByName {
		c.cycle = nil
		classes = append(classes, c)
	}
	classCycles := DetectCycles(classes, func(f *Function) *Class { return f.class }, functions)
	for c, members := range classCycles {
		c.cycle = &ClassCycle{Members: members}
	}
}
