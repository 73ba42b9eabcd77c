package robots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupsConsecutiveAgents(t *testing.T) {
	t.Parallel()

	body := `
# comment line
User-agent: googlebot
User-agent: bingbot
Disallow: /private
Allow: /private/ok

User-agent: *
Disallow: /tmp
`
	rules := Parse(body)
	require.Len(t, rules, 3)

	assert.Equal(t, "googlebot", rules[0].Agent)
	assert.Equal(t, []string{"/private"}, rules[0].Disallow)
	assert.Equal(t, []string{"/private/ok"}, rules[0].Allow)

	assert.Equal(t, "bingbot", rules[1].Agent)
	assert.Equal(t, []string{"/private"}, rules[1].Disallow)

	assert.Equal(t, "*", rules[2].Agent)
	assert.Equal(t, []string{"/tmp"}, rules[2].Disallow)
}

func TestParseEmptyDisallowIsNoOp(t *testing.T) {
	t.Parallel()

	rules := Parse("User-agent: *\nDisallow:\n")
	require.Len(t, rules, 1)
	assert.Empty(t, rules[0].Disallow)
	assert.True(t, rules.Allowed("/anything", "SomeBot/1.0"))
}

func TestParseIgnoresMalformedLines(t *testing.T) {
	t.Parallel()

	body := "garbage without colon\nUser-agent: *\nDisallow: /a\nCrawl-delay: 5\n"
	rules := Parse(body)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"/a"}, rules[0].Disallow)
}

func TestAllowedLongestPrefixWins(t *testing.T) {
	t.Parallel()

	rules := Parse("User-agent: *\nDisallow: /a\nAllow: /a/public\n")

	assert.False(t, rules.Allowed("/a/secret", "SomeBot/1.0"))
	assert.True(t, rules.Allowed("/a/public/page", "SomeBot/1.0"))
	assert.True(t, rules.Allowed("/b", "SomeBot/1.0"))
}

func TestAllowedTieGoesToAllow(t *testing.T) {
	t.Parallel()

	rules := Parse("User-agent: *\nDisallow: /x\nAllow: /x\n")
	assert.True(t, rules.Allowed("/x/page", "SomeBot/1.0"))
}

func TestAllowedSpecificAgentPreferred(t *testing.T) {
	t.Parallel()

	body := `
User-agent: InfoRadarBot
Disallow: /news

User-agent: *
Disallow: /
`
	rules := Parse(body)

	// Agent token matches as a case-insensitive substring of the identity.
	assert.False(t, rules.Allowed("/news/today", "inforadarbot/0.1"))
	assert.True(t, rules.Allowed("/blog", "InfoRadarBot/0.1"))

	// Other crawlers fall through to the wildcard record.
	assert.False(t, rules.Allowed("/blog", "OtherBot/2.0"))
}

func TestAllowedRootAndWildcardPatterns(t *testing.T) {
	t.Parallel()

	rules := Parse("User-agent: *\nDisallow: /\nAllow: /feed*\n")
	assert.False(t, rules.Allowed("/anything", "SomeBot/1.0"))
	assert.True(t, rules.Allowed("/feed.xml", "SomeBot/1.0"))
}

func TestAllowedEmptyRuleSet(t *testing.T) {
	t.Parallel()

	assert.True(t, RuleSet{}.Allowed("/whatever", "SomeBot/1.0"))
	assert.True(t, RuleSet(nil).Allowed("/whatever", "SomeBot/1.0"))
}
