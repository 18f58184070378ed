package redirect

import (
	"strings"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Rule redirects a definition lookup that resolved to a known special
// binding site onto a fixed alternate position in the same virtual
// document. Exactly one hop: results of the re-query are spliced in as-is.
type Rule struct {
	Trigger  protocol.Range
	Redirect protocol.Position
}

// pythonRules derives the rule table from the python preamble: a definition
// landing on the implicit `d` or `e` assignment is redirected onto the
// imported type name, so the lookup resolves to the conceptual base type
// instead of the literal binding.
func pythonRules() []Rule {
	lines := strings.Split(embedded.PythonPreamble, "\n")
	var rules []Rule
	for _, name := range []string{"DataSmart", "Event"} {
		var trigger protocol.Range
		var redirect protocol.Position
		for i, ln := range lines {
			if strings.HasPrefix(ln, "from ") {
				if col := strings.Index(ln, " import "+name); col >= 0 {
					redirect = protocol.Position{
						Line:      uint32(i),
						Character: uint32(col + len(" import ")),
					}
				}
			}
			if strings.HasPrefix(ln, "d = "+name) || strings.HasPrefix(ln, "e = "+name) {
				trigger = protocol.Range{
					Start: protocol.Position{Line: uint32(i), Character: 0},
					End:   protocol.Position{Line: uint32(i), Character: 1},
				}
			}
		}
		rules = append(rules, Rule{Trigger: trigger, Redirect: redirect})
	}
	return rules
}

func matchRule(rules []Rule, rng protocol.Range) (Rule, bool) {
	for _, r := range rules {
		if r.Trigger == rng {
			return r, true
		}
	}
	return Rule{}, false
}
