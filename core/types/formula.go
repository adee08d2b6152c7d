// Package types - Formula definitions
// A formula is a tagged union: numeric constant, variable reference,
// expression string, or one of the structured shapes (tiered, multiplier,
// conditional). An untagged mapping is a sum of its members.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sigil is the marker character prefixing a variable reference
// inside expression strings and reference formulas.
const Sigil = "$"

// Formula is a cost formula definition. Implementations form a closed
// set; evaluation dispatches exhaustively over the variants.
type Formula interface {
	formulaNode()
}

// Number is a numeric constant formula
type Number float64

// Ref is a variable reference formula. It holds the variable name
// without the sigil and resolves to the context value, or 0 if absent.
type Ref string

// Expr is a free-form arithmetic expression with sigil-prefixed
// variable references.
type Expr string

// Tier is a volume bracket with its own unit rate. Limit is the maximum
// volume consumed at this tier's rate; a nil Limit absorbs all remaining
// volume and is intended as the terminal tier.
type Tier struct {
	Limit *float64 `json:"limit" yaml:"limit"`
	Rate  Formula  `json:"rate" yaml:"rate"`
}

// Tiered charges volume across ordered brackets. Tiers are walked in
// declared order and are not re-sorted by the engine.
type Tiered struct {
	VolumeVar string `json:"volume_var" yaml:"volume_var"`
	Tiers     []Tier `json:"tiers" yaml:"tiers"`
}

// MultiplierEntry raises the running multiplier by Factor^(value-1)
// when the context value of Variable exceeds 1.
type MultiplierEntry struct {
	Variable string  `json:"variable" yaml:"variable"`
	Factor   float64 `json:"factor" yaml:"factor"`
}

// Multiplier evaluates a base expression once and stacks exponential
// multipliers on top of it.
type Multiplier struct {
	Base    Expr              `json:"base" yaml:"base"`
	Entries []MultiplierEntry `json:"multipliers" yaml:"multipliers"`
}

// Condition is a single comparison against a context variable.
// The variable defaults to 0 if absent from the context.
type Condition struct {
	Variable string  `json:"variable" yaml:"variable"`
	Operator string  `json:"operator" yaml:"operator"`
	Value    float64 `json:"value" yaml:"value"`
}

// ConditionalBranch pairs a condition with its result formula
type ConditionalBranch struct {
	If   Condition `json:"if" yaml:"if"`
	Then Formula   `json:"then" yaml:"then"`
}

// Conditional evaluates branches in declared order; the first satisfied
// condition wins. Else is the fallback and may be nil (meaning 0).
type Conditional struct {
	Conditions []ConditionalBranch `json:"conditions" yaml:"conditions"`
	Else       Formula             `json:"else,omitempty" yaml:"else,omitempty"`
}

// SumTerm is one named member of an untagged mapping formula
type SumTerm struct {
	Name    string
	Formula Formula
}

// Sum is the default strategy for an untagged mapping: the sum of all
// member formulas. Terms keep declaration order for stable logging.
type Sum []SumTerm

func (Number) formulaNode()      {}
func (Ref) formulaNode()         {}
func (Expr) formulaNode()        {}
func (Tiered) formulaNode()      {}
func (Multiplier) formulaNode()  {}
func (Conditional) formulaNode() {}
func (Sum) formulaNode()         {}

// ParseScalarFormula classifies a configuration string: a sigil-prefixed
// identifier becomes a Ref, anything else an Expr.
func ParseScalarFormula(s string) Formula {
	if name, ok := strings.CutPrefix(s, Sigil); ok && isIdentifier(name) {
		return Ref(name)
	}
	return Expr(s)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// DecodeFormulaYAML decodes a yaml node into a Formula
func DecodeFormulaYAML(node *yaml.Node) (Formula, error) {
	if node == nil {
		return nil, fmt.Errorf("empty formula node")
	}
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	return DecodeFormulaValue(raw)
}

// DecodeFormulaValue decodes a generic decoded value (from YAML or JSON)
// into a Formula. This is the single entry point for both configuration
// loading and snapshot import.
func DecodeFormulaValue(raw interface{}) (Formula, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("null formula")
	case int:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case float64:
		return Number(v), nil
	case string:
		return ParseScalarFormula(v), nil
	case map[string]interface{}:
		return decodeMapping(v)
	default:
		return nil, fmt.Errorf("unsupported formula shape %T", raw)
	}
}

func decodeMapping(m map[string]interface{}) (Formula, error) {
	tag, _ := m["type"].(string)
	switch tag {
	case "tiered":
		return decodeTiered(m)
	case "multiplier":
		return decodeMultiplier(m)
	case "conditional":
		return decodeConditional(m)
	case "":
		return decodeSum(m)
	default:
		return nil, fmt.Errorf("unknown formula type %q", tag)
	}
}

func decodeTiered(m map[string]interface{}) (Formula, error) {
	volumeVar, _ := m["volume_var"].(string)
	if volumeVar == "" {
		return nil, fmt.Errorf("tiered formula requires volume_var")
	}
	rawTiers, ok := m["tiers"].([]interface{})
	if !ok || len(rawTiers) == 0 {
		return nil, fmt.Errorf("tiered formula requires tiers")
	}

	tiers := make([]Tier, 0, len(rawTiers))
	for i, rt := range rawTiers {
		tm, ok := rt.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tier %d is not a mapping", i)
		}
		var tier Tier
		if lim, present := tm["limit"]; present && lim != nil {
			f, err := toFloat(lim)
			if err != nil {
				return nil, fmt.Errorf("tier %d limit: %w", i, err)
			}
			tier.Limit = &f
		}
		rate, err := DecodeFormulaValue(tm["rate"])
		if err != nil {
			return nil, fmt.Errorf("tier %d rate: %w", i, err)
		}
		tier.Rate = rate
		tiers = append(tiers, tier)
	}
	return Tiered{VolumeVar: volumeVar, Tiers: tiers}, nil
}

func decodeMultiplier(m map[string]interface{}) (Formula, error) {
	base, _ := m["base"].(string)
	if base == "" {
		return nil, fmt.Errorf("multiplier formula requires base")
	}
	rawEntries, ok := m["multipliers"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("multiplier formula requires multipliers")
	}

	entries := make([]MultiplierEntry, 0, len(rawEntries))
	for i, re := range rawEntries {
		em, ok := re.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("multiplier entry %d is not a mapping", i)
		}
		variable, _ := em["variable"].(string)
		if variable == "" {
			return nil, fmt.Errorf("multiplier entry %d requires variable", i)
		}
		factor, err := toFloat(em["factor"])
		if err != nil {
			return nil, fmt.Errorf("multiplier entry %d factor: %w", i, err)
		}
		entries = append(entries, MultiplierEntry{Variable: variable, Factor: factor})
	}
	return Multiplier{Base: Expr(base), Entries: entries}, nil
}

func decodeConditional(m map[string]interface{}) (Formula, error) {
	rawConds, ok := m["conditions"].([]interface{})
	if !ok || len(rawConds) == 0 {
		return nil, fmt.Errorf("conditional formula requires conditions")
	}

	branches := make([]ConditionalBranch, 0, len(rawConds))
	for i, rc := range rawConds {
		cm, ok := rc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("condition %d is not a mapping", i)
		}
		ifm, ok := cm["if"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("condition %d requires an if clause", i)
		}
		variable, _ := ifm["variable"].(string)
		operator, _ := ifm["operator"].(string)
		if variable == "" || !validOperator(operator) {
			return nil, fmt.Errorf("condition %d has an invalid if clause", i)
		}
		value, err := toFloat(ifm["value"])
		if err != nil {
			return nil, fmt.Errorf("condition %d value: %w", i, err)
		}
		then, err := DecodeFormulaValue(cm["then"])
		if err != nil {
			return nil, fmt.Errorf("condition %d then: %w", i, err)
		}
		branches = append(branches, ConditionalBranch{
			If:   Condition{Variable: variable, Operator: operator, Value: value},
			Then: then,
		})
	}

	cond := Conditional{Conditions: branches}
	if rawElse, present := m["else"]; present && rawElse != nil {
		elseF, err := DecodeFormulaValue(rawElse)
		if err != nil {
			return nil, fmt.Errorf("else: %w", err)
		}
		cond.Else = elseF
	}
	return cond, nil
}

func decodeSum(m map[string]interface{}) (Formula, error) {
	// Sort keys for deterministic term order; generic decoding loses
	// the document order.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sum := make(Sum, 0, len(m))
	for _, k := range keys {
		member, err := DecodeFormulaValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", k, err)
		}
		sum = append(sum, SumTerm{Name: k, Formula: member})
	}
	return sum, nil
}

func validOperator(op string) bool {
	switch op {
	case ">", ">=", "<", "<=", "==", "!=":
		return true
	}
	return false
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// EncodeFormulaValue converts a Formula back into the generic shape it
// was decoded from. Round-tripping through Encode and Decode yields a
// formula with identical evaluation behavior.
func EncodeFormulaValue(f Formula) interface{} {
	switch v := f.(type) {
	case nil:
		return nil
	case Number:
		return float64(v)
	case Ref:
		return Sigil + string(v)
	case Expr:
		return string(v)
	case Tiered:
		tiers := make([]interface{}, 0, len(v.Tiers))
		for _, t := range v.Tiers {
			tm := map[string]interface{}{"rate": EncodeFormulaValue(t.Rate)}
			if t.Limit != nil {
				tm["limit"] = *t.Limit
			}
			tiers = append(tiers, tm)
		}
		return map[string]interface{}{
			"type":       "tiered",
			"volume_var": v.VolumeVar,
			"tiers":      tiers,
		}
	case Multiplier:
		entries := make([]interface{}, 0, len(v.Entries))
		for _, e := range v.Entries {
			entries = append(entries, map[string]interface{}{
				"variable": e.Variable,
				"factor":   e.Factor,
			})
		}
		return map[string]interface{}{
			"type":        "multiplier",
			"base":        string(v.Base),
			"multipliers": entries,
		}
	case Conditional:
		conds := make([]interface{}, 0, len(v.Conditions))
		for _, b := range v.Conditions {
			conds = append(conds, map[string]interface{}{
				"if": map[string]interface{}{
					"variable": b.If.Variable,
					"operator": b.If.Operator,
					"value":    b.If.Value,
				},
				"then": EncodeFormulaValue(b.Then),
			})
		}
		out := map[string]interface{}{
			"type":       "conditional",
			"conditions": conds,
		}
		if v.Else != nil {
			out["else"] = EncodeFormulaValue(v.Else)
		}
		return out
	case Sum:
		out := make(map[string]interface{}, len(v))
		for _, term := range v {
			out[term.Name] = EncodeFormulaValue(term.Formula)
		}
		return out
	default:
		return nil
	}
}

// MarshalFormulaJSON marshals a formula to its configuration shape
func MarshalFormulaJSON(f Formula) ([]byte, error) {
	return json.Marshal(EncodeFormulaValue(f))
}

// UnmarshalFormulaJSON decodes a formula from its configuration shape
func UnmarshalFormulaJSON(data []byte) (Formula, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return DecodeFormulaValue(raw)
}
