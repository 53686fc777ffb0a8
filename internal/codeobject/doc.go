// Package codeobject defines the contract of the code-object service: the
// component that turns a GPU code object into disassembly text and exposes
// the metadata tree attached to it.
//
// The service is consumed through three interfaces:
//   - Service loads executables and disassembles them for a target ISA.
//   - Executable is a loaded code object and owns its metadata tree.
//   - Node is a read-only handle on one metadata node (String, List or Map).
//
// Every query may fail. Failures carry a Status so callers can report the
// code the service returned (see StatusOf).
//
// The package also ships an in-memory tree (String, List, Map) that
// backends use to expose decoded metadata and that tests use as fixtures.
package codeobject
