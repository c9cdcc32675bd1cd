// Package agenda holds the rule catalog: one pure check per agenda id, joined
// with the agenda metadata loaded at startup.
package agenda

import (
	"sort"

	"svw.info/propagenda/internal/domain"
)

// UnavailableHint is returned for agenda ids without a check.
const UnavailableHint = "No check available for this agenda."

// Rule is an agenda together with its check.
type Rule struct {
	domain.Agenda
	check Check
}

// Evaluate runs the rule's check, or the fallback verdict when none exists.
func (r Rule) Evaluate(objects []domain.BoardObject) domain.Verdict {
	if r.check == nil {
		return unavailable()
	}
	return r.check(objects)
}

// Checked reports whether a built-in check backs the rule.
func (r Rule) Checked() bool { return r.check != nil }

func unavailable() domain.Verdict {
	return domain.Verdict{Satisfied: false, Hints: []string{UnavailableHint}}
}

// Catalog is an immutable, ordered set of rules.
type Catalog struct {
	rules []Rule
	byID  map[string]int
}

// New joins metadata against the built-in checks by id, keeping metadata order.
// Entries without a matching check still load; they always fail evaluation.
func New(meta []domain.Agenda) *Catalog {
	c := &Catalog{rules: make([]Rule, 0, len(meta)), byID: make(map[string]int, len(meta))}
	for _, m := range meta {
		if _, dup := c.byID[m.ID]; dup {
			continue
		}
		c.byID[m.ID] = len(c.rules)
		c.rules = append(c.rules, Rule{Agenda: m, check: checks[m.ID]})
	}
	return c
}

// Empty is the catalog used when metadata could not be loaded.
func Empty() *Catalog { return New(nil) }

// Evaluate computes the verdict for a loaded rule. Ids outside the catalog
// never fail: they resolve to the fallback verdict.
func (c *Catalog) Evaluate(ruleID string, objects []domain.BoardObject) domain.Verdict {
	if c != nil {
		if i, ok := c.byID[ruleID]; ok {
			return c.rules[i].Evaluate(objects)
		}
	}
	return unavailable()
}

// Evaluate runs the built-in check for ruleID without any loaded metadata.
func Evaluate(ruleID string, objects []domain.BoardObject) domain.Verdict {
	if check, ok := checks[ruleID]; ok {
		return check(objects)
	}
	return unavailable()
}

// Rule looks up a rule by id.
func (c *Catalog) Rule(id string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// Agendas returns the metadata in catalog order.
func (c *Catalog) Agendas() []domain.Agenda {
	if c == nil {
		return nil
	}
	out := make([]domain.Agenda, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Agenda
	}
	return out
}

// Len is the number of loaded rules.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Known reports whether id has a built-in check, independent of loaded metadata.
func Known(id string) bool {
	_, ok := checks[id]
	return ok
}

// BuiltinIDs lists the ids with a built-in check, sorted.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(checks))
	for id := range checks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
