// Package condition contains the pure evaluator for nested visibility conditions.
// This is part of the Functional Core - no I/O, only pure functions.
package condition

// Condition is a boolean expression over the most recently chosen target.
// The set of implementations is closed: Target, And, Or, Not and Unknown.
type Condition interface {
	isCondition()
}

// Target is a leaf that holds when it equals the last chosen target.
type Target string

// And holds when every sub-condition holds. An empty And holds.
type And []Condition

// Or holds when any sub-condition holds. An empty Or does not hold.
type Or []Condition

// Not negates its inner condition.
type Not struct {
	Inner Condition
}

// Unknown is produced for shapes the decoder does not recognise.
// It never holds.
type Unknown struct{}

func (Target) isCondition()  {}
func (And) isCondition()     {}
func (Or) isCondition()      {}
func (Not) isCondition()     {}
func (Unknown) isCondition() {}

// Evaluate resolves c against lastChosenTarget.
// A nil condition asserts nothing and evaluates to false.
func Evaluate(c Condition, lastChosenTarget string) bool {
	switch node := c.(type) {
	case nil:
		return false
	case Target:
		return string(node) == lastChosenTarget
	case And:
		for _, sub := range node {
			if !Evaluate(sub, lastChosenTarget) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range node {
			if Evaluate(sub, lastChosenTarget) {
				return true
			}
		}
		return false
	case Not:
		return !Evaluate(node.Inner, lastChosenTarget)
	case Unknown:
		return false
	default:
		return false
	}
}

// Rule is a when/unless pair. It fires when When holds and Unless does not.
type Rule struct {
	When   Condition
	Unless Condition
}

// Fires reports whether the rule fires for lastChosenTarget.
func (r Rule) Fires(lastChosenTarget string) bool {
	return Evaluate(r.When, lastChosenTarget) && !Evaluate(r.Unless, lastChosenTarget)
}
