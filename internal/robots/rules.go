// Package robots implements the crawl-permission gate: fetching, parsing,
// caching and evaluating robots.txt exclusion rules per origin.
//
// The matcher implements longest-prefix matching with Allow preferred on
// equal specificity. Wildcard and $-anchored patterns are not supported
// beyond stripping a trailing "*" before the prefix comparison.
package robots

import "strings"

// Rule holds the Allow/Disallow path patterns published for one user-agent
// token. Tokens are matched case-insensitively as substrings of the crawler
// identity, except for the wildcard "*".
type Rule struct {
	Agent    string
	Allow    []string
	Disallow []string
}

// RuleSet is the ordered list of rules parsed from one origin's robots.txt.
// An empty (or nil) rule set allows everything.
type RuleSet []Rule

type parseState int

const (
	stateAgents parseState = iota
	stateBody
)

// Parse converts a robots.txt body into a RuleSet. Lines are `key: value`
// with the first colon as the separator; blank lines and # comments are
// skipped. Consecutive User-agent lines accumulate into one record; the
// first directive after an agent line closes accumulation, and a later
// User-agent line starts a new record only once the current record holds at
// least one Allow or Disallow.
func Parse(body string) RuleSet {
	var (
		rules    RuleSet
		agents   []string
		allow    []string
		disallow []string
	)
	state := stateAgents

	flush := func() {
		for _, agent := range agents {
			rules = append(rules, Rule{
				Agent:    agent,
				Allow:    append([]string(nil), allow...),
				Disallow: append([]string(nil), disallow...),
			})
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "user-agent" {
			if state == stateBody {
				if len(allow) > 0 || len(disallow) > 0 {
					flush()
					agents = nil
					allow = nil
					disallow = nil
				}
				state = stateAgents
			}
			if value != "" {
				agents = append(agents, value)
			}
			continue
		}

		if len(agents) > 0 {
			state = stateBody
		}
		switch key {
		case "disallow":
			// An empty Disallow historically means "allow all"; it is
			// treated as a no-op entry here.
			if value != "" {
				disallow = append(disallow, value)
			}
		case "allow":
			if value != "" {
				allow = append(allow, value)
			}
		}
	}

	flush()
	return rules
}

// Allowed evaluates path against the rule set for the given crawler
// identity. Rules whose agent token is a case-insensitive substring of
// userAgent take precedence over wildcard rules; with no applicable rules
// the path is allowed. Among matching patterns the longest wins, and Allow
// wins over Disallow at equal length.
func (rs RuleSet) Allowed(path, userAgent string) bool {
	agent := strings.ToLower(userAgent)

	var applicable []Rule
	for _, rule := range rs {
		if rule.Agent != "*" && strings.Contains(agent, strings.ToLower(rule.Agent)) {
			applicable = append(applicable, rule)
		}
	}
	if len(applicable) == 0 {
		for _, rule := range rs {
			if rule.Agent == "*" {
				applicable = append(applicable, rule)
			}
		}
	}
	if len(applicable) == 0 {
		return true
	}

	bestLength := -1
	allowed := true
	for _, rule := range applicable {
		for _, pattern := range rule.Disallow {
			if matchesPath(path, pattern) && len(pattern) > bestLength {
				bestLength = len(pattern)
				allowed = false
			}
		}
		for _, pattern := range rule.Allow {
			if matchesPath(path, pattern) && len(pattern) >= bestLength {
				bestLength = len(pattern)
				allowed = true
			}
		}
	}
	return allowed
}

func matchesPath(path, pattern string) bool {
	if pattern == "/" {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
}
