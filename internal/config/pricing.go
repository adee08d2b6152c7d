// Package config - Pricing configuration
// The pricing file carries everything the engine needs: base costs,
// service formulas, multiplier tables, and system profiles. It is
// loaded once before any calculation; the engine never touches disk.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"platform-cost/core/types"
	"platform-cost/internal/errors"
)

// Pricing is the engine-facing pricing configuration
type Pricing struct {
	// BaseCosts are globally applied default variables
	BaseCosts types.Variables

	// Formulas maps service name to its formula definition
	Formulas types.ServiceFormulas

	// Multipliers are named selector tables (volume_discount, contract_term, ...)
	Multipliers types.MultiplierTables

	// Systems maps system id to its profile
	Systems map[string]types.System
}

// rawPricing is the on-disk shape; formula values are polymorphic and
// decode through the tagged union.
type rawPricing struct {
	BaseCosts   types.Variables                   `json:"base_costs" yaml:"base_costs"`
	Formulas    map[string]yaml.Node              `json:"-" yaml:"formulas"`
	FormulasRaw map[string]json.RawMessage        `json:"formulas" yaml:"-"`
	Multipliers types.MultiplierTables            `json:"multipliers" yaml:"multipliers"`
	Systems     map[string]rawSystem              `json:"systems" yaml:"systems"`
}

type rawSystem struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Components  types.Variables `json:"components" yaml:"components"`
}

// LoadPricing loads a pricing configuration file (YAML or JSON by
// extension). Missing or structurally invalid pricing data aborts
// engine initialization; this is the only fatal configuration path.
func LoadPricing(path string) (*Pricing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("reading pricing file", err)
	}

	var raw rawPricing
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.Config("parsing pricing JSON", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Config("parsing pricing YAML", err)
		}
	}

	pricing := &Pricing{
		BaseCosts:   raw.BaseCosts,
		Formulas:    make(types.ServiceFormulas),
		Multipliers: raw.Multipliers,
		Systems:     make(map[string]types.System),
	}
	if pricing.BaseCosts == nil {
		pricing.BaseCosts = types.Variables{}
	}
	if pricing.Multipliers == nil {
		pricing.Multipliers = types.MultiplierTables{}
	}

	for service, node := range raw.Formulas {
		n := node
		f, err := types.DecodeFormulaYAML(&n)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("formula %q", service), err)
		}
		pricing.Formulas[service] = f
	}
	for service, msg := range raw.FormulasRaw {
		f, err := types.UnmarshalFormulaJSON(msg)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("formula %q", service), err)
		}
		pricing.Formulas[service] = f
	}

	for id, rs := range raw.Systems {
		components := rs.Components
		if components == nil {
			components = types.Variables{}
		}
		pricing.Systems[id] = types.System{
			ID:          id,
			Name:        rs.Name,
			Description: rs.Description,
			Components:  components,
		}
	}

	if err := pricing.Validate(); err != nil {
		return nil, err
	}
	return pricing, nil
}

// Validate checks the structural invariants the engine relies on
func (p *Pricing) Validate() error {
	if len(p.Formulas) == 0 {
		return errors.New(errors.TypeConfig, "pricing configuration has no formulas")
	}
	if len(p.Systems) == 0 {
		return errors.New(errors.TypeConfig, "pricing configuration has no systems")
	}
	for id, system := range p.Systems {
		if system.Name == "" {
			return errors.Newf(errors.TypeConfig, "system %q has no name", id)
		}
	}
	return nil
}

// System returns the system with the given id
func (p *Pricing) System(id string) (types.System, error) {
	system, ok := p.Systems[id]
	if !ok {
		return types.System{}, errors.NotFound("system", id)
	}
	return system, nil
}

// SystemIDs returns all system ids, sorted
func (p *Pricing) SystemIDs() []string {
	ids := make([]string, 0, len(p.Systems))
	for id := range p.Systems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
