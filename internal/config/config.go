// Package config reads the engine's options surface (spec.md §6.5) from a
// TOML file, the same way the teacher's internal/parser/toml package reads
// a schema definition: a plain decode into a tagged struct, followed by
// validation against the enumerations the options allow and defaulting of
// anything left unset.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backend selects the IR-to-native code generator.
type Backend string

const (
	BackendAssembler Backend = "assembler"
	BackendLLVM      Backend = "llvm"
)

// RegAlloc selects the assembler backend's register allocation strategy.
type RegAlloc string

const (
	RegAllocStackSpill RegAlloc = "stack_spill"
	RegAllocLinearScan RegAlloc = "linear_scan"
)

// Skinner selects how adaptive join code is realized across episodes.
type Skinner string

const (
	SkinnerRecompile Skinner = "recompile"
	SkinnerPermute   Skinner = "permute"
	SkinnerHybrid    Skinner = "hybrid"
)

// ScanSelectMode selects whether Select compiles to the adaptive or
// linear scan-select path.
type ScanSelectMode string

const (
	ScanSelectNone    ScanSelectMode = "none"
	ScanSelectPermute ScanSelectMode = "permute"
)

// PipelineMode selects whether a plan's regions execute with a fixed,
// precompiled pipeline or recompile adaptively between episodes.
type PipelineMode string

const (
	PipelineStatic   PipelineMode = "static"
	PipelineAdaptive PipelineMode = "adaptive"
)

// DefaultBudget is spec.md §6.5's default budget_per_episode and
// scan_select_budget_per_episode.
const DefaultBudget = int32(10000)

// Config is the engine's options surface, spec.md §6.5.
type Config struct {
	Backend                    Backend        `toml:"backend"`
	RegAlloc                   RegAlloc       `toml:"reg_alloc"`
	Skinner                    Skinner        `toml:"skinner"`
	SkinnerScanSelect          ScanSelectMode `toml:"skinner_scan_select"`
	BudgetPerEpisode           int32          `toml:"budget_per_episode"`
	ScanSelectBudgetPerEpisode int32          `toml:"scan_select_budget_per_episode"`
	ScanSelectSeed             int64          `toml:"scan_select_seed"`
	PipelineMode               PipelineMode   `toml:"pipeline_mode"`
}

// tomlDocument is the top-level shape of the options file; a bare
// [options] table keeps the file self-describing the way the teacher's
// schema files nest everything under named top-level tables.
type tomlDocument struct {
	Options Config `toml:"options"`
}

// Default returns the configuration spec.md §6.5 describes when no
// options file is given: assembler backend, stack-spill register
// allocation, recompiling skinner join, non-adaptive scan-select, the
// default budgets, a zero (unseeded-but-deterministic) RNG seed, and a
// static pipeline.
func Default() Config {
	return Config{
		Backend:                    BackendAssembler,
		RegAlloc:                   RegAllocStackSpill,
		Skinner:                    SkinnerRecompile,
		SkinnerScanSelect:          ScanSelectNone,
		BudgetPerEpisode:           DefaultBudget,
		ScanSelectBudgetPerEpisode: DefaultBudget,
		PipelineMode:               PipelineStatic,
	}
}

// LoadFile opens path and parses it as a TOML options file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open file %q: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads TOML content from r, fills in any field left unset with
// Default's value, and validates the result.
func Load(r io.Reader) (Config, error) {
	doc := tomlDocument{Options: Default()}
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return Config{}, fmt.Errorf("config: decode error: %w", err)
	}

	cfg := doc.Options
	cfg.Backend = Backend(normalizeEnum(string(cfg.Backend)))
	cfg.RegAlloc = RegAlloc(normalizeEnum(string(cfg.RegAlloc)))
	cfg.Skinner = Skinner(normalizeEnum(string(cfg.Skinner)))
	cfg.SkinnerScanSelect = ScanSelectMode(normalizeEnum(string(cfg.SkinnerScanSelect)))
	cfg.PipelineMode = PipelineMode(normalizeEnum(string(cfg.PipelineMode)))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every enumerated field against spec.md §6.5's allowed
// values and that both budgets are positive.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendAssembler, BackendLLVM:
	default:
		return fmt.Errorf("config: backend must be %q or %q, got %q", BackendAssembler, BackendLLVM, c.Backend)
	}

	if c.Backend == BackendAssembler {
		switch c.RegAlloc {
		case RegAllocStackSpill, RegAllocLinearScan:
		default:
			return fmt.Errorf("config: reg_alloc must be %q or %q, got %q", RegAllocStackSpill, RegAllocLinearScan, c.RegAlloc)
		}
	}

	switch c.Skinner {
	case SkinnerRecompile, SkinnerPermute, SkinnerHybrid:
	default:
		return fmt.Errorf("config: skinner must be one of %q, %q, %q, got %q", SkinnerRecompile, SkinnerPermute, SkinnerHybrid, c.Skinner)
	}

	switch c.SkinnerScanSelect {
	case ScanSelectNone, ScanSelectPermute:
	default:
		return fmt.Errorf("config: skinner_scan_select must be %q or %q, got %q", ScanSelectNone, ScanSelectPermute, c.SkinnerScanSelect)
	}

	switch c.PipelineMode {
	case PipelineStatic, PipelineAdaptive:
	default:
		return fmt.Errorf("config: pipeline_mode must be %q or %q, got %q", PipelineStatic, PipelineAdaptive, c.PipelineMode)
	}

	if c.BudgetPerEpisode <= 0 {
		return fmt.Errorf("config: budget_per_episode must be positive, got %d", c.BudgetPerEpisode)
	}
	if c.ScanSelectBudgetPerEpisode <= 0 {
		return fmt.Errorf("config: scan_select_budget_per_episode must be positive, got %d", c.ScanSelectBudgetPerEpisode)
	}

	return nil
}

// normalizeEnum lowercases and trims an enum-typed TOML value, matching
// the teacher's own case-insensitive dialect-name handling
// (cmd/smf's validateDialect).
func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
