// Package ir is the boundary between the translators (internal/translate)
// and the two machine-code backends spec.md §1 treats as external
// collaborators: "given an IR program with named external functions
// declared, I can compile it and get back native function pointers
// callable with the C ABI." This package owns exactly that contract and
// nothing past it — neither backend's register allocation, instruction
// selection, or JIT linking lives here.
//
// The registry below is the same shape as a SQL-dialect registry: a name
// (spec.md §6.5's "backend" option) maps to a constructor, registered by
// a blank import of the backend package, looked up once at query-plan
// compile time.
package ir

import (
	"fmt"
	"sync"

	"adaptql/internal/compile"
)

// Kind identifies one of the two machine-code backends spec.md §6.5
// recognizes under the "backend" configuration option.
type Kind string

const (
	Assembler Kind = "assembler"
	LLVM      Kind = "llvm"
)

// ExternSymbol is one runtime entry point a Program's generated code may
// call by name (spec.md §6.1: "hashtable::insert",
// "memory_column_index::get_bucket_int32", "vector::push_back",
// "string::equals", "printer::print_int64", ...). Signature is advisory —
// it documents the C-ABI argument/return shape a backend must bind the
// name to — the Go runtime primitives in internal/runtime/* are the
// actual implementation a backend resolves Name against.
type ExternSymbol struct {
	Name      string
	Signature string
}

// TableFunction is one table-function entry point a Program defines,
// obeying the handler ABI from spec.md §4.5/§6.2. Level distinguishes a
// join/scan-select region's per-table-position handlers from its single
// valid-tuple handler (Level == -1).
type TableFunction struct {
	Name  string
	Level int
	Body  compile.Handler
}

// Program is the IR unit handed to a Backend: the external symbols it
// references plus the table functions it defines. In this repository's
// scope (spec.md's Non-goals exclude the backends' internals), a
// Program's "IR" is simply the already-constructed Go closures the
// translators build directly against internal/runtime/* and
// internal/compile — Compile's job is only to validate the declared
// contract and hand back a callable module, standing in for the real
// instruction-selection/codegen step a native backend would perform.
type Program struct {
	Name      string
	Externs   []ExternSymbol
	Functions []TableFunction
}

// Declare appends one required external symbol to the program.
func (p *Program) Declare(name, signature string) {
	p.Externs = append(p.Externs, ExternSymbol{Name: name, Signature: signature})
}

// Define registers one table-function entry point.
func (p *Program) Define(name string, level int, body compile.Handler) {
	p.Functions = append(p.Functions, TableFunction{Name: name, Level: level, Body: body})
}

// CompiledModule is what a Backend hands back: native function pointers
// (in this Go implementation, the closures themselves) addressable by
// the names Program.Define registered.
type CompiledModule struct {
	handlers map[string]compile.Handler
}

// NewCompiledModule returns an empty module, for a Backend implementation
// to populate via Install while linking a Program.
func NewCompiledModule() *CompiledModule {
	return &CompiledModule{handlers: make(map[string]compile.Handler)}
}

// Install binds name to h, the equivalent of a linker placing a compiled
// table function at a resolvable symbol address.
func (m *CompiledModule) Install(name string, h compile.Handler) {
	m.handlers[name] = h
}

// Lookup resolves a table function by name, the equivalent of a JIT's
// symbol-address lookup after linking.
func (m *CompiledModule) Lookup(name string) (compile.Handler, bool) {
	h, ok := m.handlers[name]
	return h, ok
}

// MustLookup panics if name was not defined by the compiled program — a
// translator bug (referencing a handler it never declared), not a
// recoverable query-level condition.
func (m *CompiledModule) MustLookup(name string) compile.Handler {
	h, ok := m.handlers[name]
	if !ok {
		panic(fmt.Sprintf("ir: backend never compiled table function %q", name))
	}
	return h
}

// Backend lowers a Program to native code and returns callable function
// pointers. Compile failures propagate as query-level errors (spec.md
// §7), never panics — a rejected Program is an ordinary runtime
// condition (e.g. an unsupported construct in this backend), not a
// programmer-error invariant violation.
type Backend interface {
	Kind() Kind
	Compile(prog *Program) (*CompiledModule, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[Kind]func() Backend{}
)

// Register installs a backend constructor under kind. Called from a
// backend package's init(), mirroring the teacher's dialect
// registration idiom: callers select a backend with a blank import
// (`_ "adaptql/internal/ir/asmbackend"`) plus the config-driven Kind.
func Register(kind Kind, ctor func() Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = ctor
}

// Get constructs the backend registered under kind.
func Get(kind Kind) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("ir: backend %q is not registered (forgot a blank import?)", kind)
	}
	return ctor(), nil
}
