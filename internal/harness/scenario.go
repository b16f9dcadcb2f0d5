package harness

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// FlowToken is the fixed flow token for every invocation.
	// If empty, testutil.DefaultFlowToken is used.
	FlowToken string `yaml:"flow_token,omitempty"`

	// Accounts are created in order before any step runs.
	Accounts []AccountSetup `yaml:"accounts"`

	// Steps are invocations, run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// AccountSetup declares one slot. Its key is derived from owner and name.
type AccountSetup struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
	Value uint32 `yaml:"value,omitempty"`
}

// Step is one invocation.
type Step struct {
	Account string `yaml:"account"`
	Caller  string `yaml:"caller"`

	// Op and Operand are encoded with codec.EncodeOperation.
	Op      string `yaml:"op,omitempty"`
	Operand uint32 `yaml:"operand,omitempty"`

	// Raw is the instruction in hex, for bytes the codec would never produce.
	Raw string `yaml:"raw,omitempty"`

	// Expect is optional; without it the step is not checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step. Setting Value implies success.
type Expect struct {
	Value *uint32 `yaml:"value,omitempty"`
	Error string  `yaml:"error,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Account names the slot (final_value, replay_deterministic).
	Account string `yaml:"account,omitempty"`

	// Value is the expected decoded value (final_value).
	Value uint32 `yaml:"value,omitempty"`

	// Outcome and Count are used by outcome_count.
	Outcome string `yaml:"outcome,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalValue          = "final_value"
	AssertOutcomeCount        = "outcome_count"
	AssertReplayDeterministic = "replay_deterministic"
)

// LoadScenario reads a scenario YAML file, checks it against the schema and
// decodes it.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario validates and decodes a scenario document. filename is used
// in error messages only.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := ValidateDocument(filename, data); err != nil {
		return nil, err
	}

	// Strict decode catches anything the schema let through as open.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Instruction returns the instruction bytes for the step.
func (s Step) Instruction() ([]byte, error) {
	if s.Raw != "" || s.Op == "" {
		b, err := hex.DecodeString(s.Raw)
		if err != nil {
			return nil, fmt.Errorf("raw: %w", err)
		}
		return b, nil
	}
	kind, err := ir.ParseOpKind(s.Op)
	if err != nil {
		return nil, err
	}
	return codec.EncodeOperation(ir.Operation{Kind: kind, Operand: s.Operand}), nil
}

// validateScenario checks the cross-references the schema cannot express.
func validateScenario(s *Scenario) error {
	accounts := make(map[string]bool, len(s.Accounts))
	for i, a := range s.Accounts {
		if accounts[a.Name] {
			return fmt.Errorf("accounts[%d]: duplicate account %q", i, a.Name)
		}
		accounts[a.Name] = true
	}

	for i, step := range s.Steps {
		if !accounts[step.Account] {
			return fmt.Errorf("steps[%d]: unknown account %q", i, step.Account)
		}
		if step.Op != "" && step.Raw != "" {
			return fmt.Errorf("steps[%d]: op and raw are mutually exclusive", i)
		}
		if step.Expect != nil && step.Expect.Value != nil && step.Expect.Error != "" {
			return fmt.Errorf("steps[%d].expect: value and error are mutually exclusive", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, accounts); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, accounts map[string]bool) error {
	switch a.Type {
	case AssertFinalValue, AssertReplayDeterministic:
		if !accounts[a.Account] {
			return fmt.Errorf("assertions[%d]: %s needs a declared account, got %q", index, a.Type, a.Account)
		}
	case AssertOutcomeCount:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for outcome_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
