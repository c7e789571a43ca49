// Package encounter decides when an encounter is won or lost.
package encounter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Outcome is the final result of an encounter.
type Outcome int32

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

// String returns outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// ParseOutcome parses "victory" or "defeat".
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "victory", "win":
		return OutcomeVictory, nil
	case "defeat", "loss":
		return OutcomeDefeat, nil
	default:
		return OutcomeNone, fmt.Errorf("unknown outcome %q", s)
	}
}

// Env is the state a rule condition is evaluated against.
// Field names are the identifiers available in rule expressions.
type Env struct {
	Score           int
	TurretHealth    float64
	TurretMaxHealth float64
	LiveShips       int
	ShipsDestroyed  int
	Elapsed         float64 // seconds of simulation time
}

// Rule ends the encounter with Outcome when its condition holds.
type Rule struct {
	Name    string
	When    string // expr-lang boolean expression over Env
	Outcome Outcome

	program *vm.Program
}

// Result describes how an encounter was decided.
type Result struct {
	Outcome Outcome
	Rule    string
	Env     Env
}

// turretDestroyedRule names the built-in defeat on turret death.
const turretDestroyedRule = "turret_destroyed"

// DefaultRules returns the baseline victory/defeat rules.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "victory", When: "Score >= 250", Outcome: OutcomeVictory},
		{Name: "defeat", When: "TurretHealth <= 0", Outcome: OutcomeDefeat},
	}
}

// Director evaluates the rules each frame. Once an outcome is decided it latches:
// later evaluations return it unchanged and listeners are not notified again.
type Director struct {
	rules []*Rule

	mu        sync.Mutex
	result    Result
	decided   bool
	listeners []func(Result)
}

// NewDirector compiles the rules. Rules are evaluated in the given order; the first
// match wins. An empty rule set is valid: the encounter then only ends on turret death.
func NewDirector(rules []Rule) (*Director, error) {
	compiled := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.Outcome != OutcomeVictory && r.Outcome != OutcomeDefeat {
			return nil, fmt.Errorf("rule %q: invalid outcome %s", r.Name, r.Outcome)
		}
		prog, err := expr.Compile(r.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
		compiled = append(compiled, &r)
	}
	return &Director{rules: compiled}, nil
}

// OnDecided registers a listener called once when the outcome is decided.
func (d *Director) OnDecided(fn func(Result)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Evaluate checks the rules against env. Returns the outcome and true if the
// encounter is decided (now or earlier).
func (d *Director) Evaluate(env Env) (Outcome, bool) {
	d.mu.Lock()
	if d.decided {
		outcome := d.result.Outcome
		d.mu.Unlock()
		return outcome, true
	}

	result, ok := d.match(env)
	if !ok {
		d.mu.Unlock()
		return OutcomeNone, false
	}

	d.result = result
	d.decided = true
	listeners := d.listeners
	d.mu.Unlock()

	slog.Info("encounter decided",
		"outcome", result.Outcome.String(),
		"rule", result.Rule,
		"score", env.Score,
		"turretHealth", env.TurretHealth,
		"shipsDestroyed", env.ShipsDestroyed,
		"elapsed", env.Elapsed)

	for _, fn := range listeners {
		fn(result)
	}
	return result.Outcome, true
}

// match must be called with d.mu held.
func (d *Director) match(env Env) (Result, bool) {
	// Losing the turret always ends the encounter.
	if env.TurretMaxHealth > 0 && env.TurretHealth <= 0 {
		return Result{Outcome: OutcomeDefeat, Rule: turretDestroyedRule, Env: env}, true
	}

	for _, r := range d.rules {
		out, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("encounter rule error", "rule", r.Name, "error", err)
			continue
		}
		if hit, ok := out.(bool); ok && hit {
			return Result{Outcome: r.Outcome, Rule: r.Name, Env: env}, true
		}
	}
	return Result{}, false
}

// Result returns the decided result and whether there is one.
func (d *Director) Result() (Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result, d.decided
}

// Outcome returns the decided outcome (OutcomeNone while undecided).
func (d *Director) Outcome() Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result.Outcome
}

// Reset clears the latched outcome. Used when a level is reloaded.
func (d *Director) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.result = Result{}
	d.decided = false
}
