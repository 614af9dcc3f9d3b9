package translate

// Blank-imported so every test in this package that calls through
// Options{}.WithDefaults()'s default backend (ir.Assembler) finds it
// registered, the same way cmd/adaptql registers both backends for a
// real invocation.
import (
	_ "adaptql/internal/ir/asmbackend"
)
