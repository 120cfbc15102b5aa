package engine

import (
	"os"

	"sigs.k8s.io/yaml"
)

// Config is the ambient, file-loadable configuration for a Machine,
// separate from the program it runs: limits and debug knobs an embedder
// tunes per deployment rather than per query. Grounded on the teacher's
// VM fields (maxVariables, debug) promoted into their own loadable
// struct, in the style of the other example repos that externalize such
// knobs as YAML (sigs.k8s.io/yaml, the Kubernetes-ecosystem decoder,
// rather than gopkg.in/yaml.v2 directly). LoadConfig uses its non-strict
// Unmarshal, so unknown keys are ignored.
type Config struct {
	// MaxVariables caps how many distinct Var ids NewVariable will mint
	// before returning an error. Zero means unlimited.
	MaxVariables int64 `json:"maxVariables"`

	// Verbose installs DebugHookFn(os.Stderr) on the constructed Machine
	// when true and no explicit WithHook option overrides it.
	Verbose bool `json:"verbose"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithMaxVariables caps NewVariable allocations.
func WithMaxVariables(n int64) Option {
	return func(m *Machine) { m.maxVariables = n }
}

// WithHook installs a HookFunc at construction time.
func WithHook(h HookFunc) Option {
	return func(m *Machine) { m.hook = h }
}

// WithVerbose installs DebugHookFn(os.Stderr) unless a later WithHook
// option overrides it — options apply in order, so put WithVerbose
// first if combining both.
func WithVerbose() Option {
	return func(m *Machine) { m.hook = DebugHookFn(os.Stderr) }
}

// NewMachineFromConfig builds a Machine the way NewMachine does, then
// applies cfg's ambient settings before any explicit opts, so an opt can
// still override a config-file default.
func NewMachineFromConfig(cfg *Config, numRegisters int, code Code, opts ...Option) *Machine {
	all := make([]Option, 0, len(opts)+2)
	if cfg != nil {
		if cfg.MaxVariables != 0 {
			all = append(all, WithMaxVariables(cfg.MaxVariables))
		}
		if cfg.Verbose {
			all = append(all, WithVerbose())
		}
	}
	all = append(all, opts...)
	return NewMachine(numRegisters, code, all...)
}
