package core

// Rule pairs a predicate with the result it yields when the predicate matches
type Rule[In, Out any] struct {
	Name   string
	Match  func(In) bool
	Result Out
}

// FirstMatch evaluates rules in order and returns the result of the first one
// that matches. The boolean is false when no rule matched.
func FirstMatch[In, Out any](rules []Rule[In, Out], in In) (Out, bool) {
	for _, r := range rules {
		if r.Match(in) {
			return r.Result, true
		}
	}
	var zero Out
	return zero, false
}

// FirstMatchOr is FirstMatch with a fallback result
func FirstMatchOr[In, Out any](rules []Rule[In, Out], in In, fallback Out) Out {
	if out, ok := FirstMatch(rules, in); ok {
		return out
	}
	return fallback
}

func hasAnyTag(tags ...Tag) func(TagSet) bool {
	return func(s TagSet) bool {
		for _, t := range tags {
			if s.Has(t) {
				return true
			}
		}
		return false
	}
}

func hasAllTags(tags ...Tag) func(TagSet) bool {
	return func(s TagSet) bool {
		for _, t := range tags {
			if !s.Has(t) {
				return false
			}
		}
		return true
	}
}
