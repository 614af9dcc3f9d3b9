// Package llvmbackend is the LLVM-based JIT backend spec.md §6.5 names
// under "backend": "llvm". As with internal/ir/asmbackend, LLVM's IR
// construction, optimization passes, and MCJIT/ORC linking are excluded
// by spec.md §1's Non-goals; this package implements only the compile
// contract at the boundary those internals sit behind.
package llvmbackend

import (
	"fmt"

	"adaptql/internal/ir"
)

// Backend implements ir.Backend for the LLVM JIT path.
type Backend struct {
	// OptLevel stands in for an LLVM pass-manager optimization level
	// (0-3); it has no effect on this package's Compile, which never
	// touches codegen, but is threaded through so a real LLVM backend
	// swapped in later has a natural place to read it from.
	OptLevel int
}

func New(optLevel int) *Backend {
	return &Backend{OptLevel: optLevel}
}

func (b *Backend) Kind() ir.Kind { return ir.LLVM }

func (b *Backend) Compile(prog *ir.Program) (*ir.CompiledModule, error) {
	mod := ir.NewCompiledModule()
	for _, fn := range prog.Functions {
		if fn.Body == nil {
			return nil, fmt.Errorf("llvmbackend: table function %q has no body", fn.Name)
		}
		mod.Install(fn.Name, fn.Body)
	}
	return mod, nil
}

func init() {
	ir.Register(ir.LLVM, func() ir.Backend { return New(2) })
}
