package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptql/internal/compile"
)

type stubBackend struct{}

func (stubBackend) Kind() Kind { return "stub" }

func (stubBackend) Compile(prog *Program) (*CompiledModule, error) {
	m := NewCompiledModule()
	for _, fn := range prog.Functions {
		m.Install(fn.Name, fn.Body)
	}
	return m, nil
}

func TestRegisterAndGet(t *testing.T) {
	Register("stub", func() Backend { return stubBackend{} })

	b, err := Get("stub")
	require.NoError(t, err)
	assert.Equal(t, Kind("stub"), b.Kind())
}

func TestGetUnregistered(t *testing.T) {
	_, err := Get("no-such-backend")
	assert.Error(t, err)
}

func TestCompiledModuleLookup(t *testing.T) {
	prog := &Program{Name: "q"}
	prog.Declare("vector::push_back", "func(*Vector) []byte")
	prog.Define("level0", 0, func(budget int32, resume bool) int32 { return budget })

	b := stubBackend{}
	mod, err := b.Compile(prog)
	require.NoError(t, err)

	h, ok := mod.Lookup("level0")
	require.True(t, ok)
	assert.Equal(t, int32(5), h(5, true))

	_, ok = mod.Lookup("missing")
	assert.False(t, ok)
}

func TestCompiledModuleMustLookupPanics(t *testing.T) {
	mod := &CompiledModule{handlers: map[string]compile.Handler{}}
	assert.Panics(t, func() { mod.MustLookup("missing") })
}
