// Package extract finds calls of the form prefix.name(args, kw=value, ...)
// in single lines of source text.
//
// Extraction is deliberately line-based and naive: arguments are split on
// commas, anything before the first '=' of an argument is a keyword name,
// and nested or multi-line calls are not understood.
package extract

import (
	"strings"

	"github.com/bastiangx/kwserve/internal/utils"
)

// DefaultPrefix is used when no prefix is configured or detected.
const DefaultPrefix = "plt"

// Call is one parsed invocation: the function name and the keyword
// argument names in the order they appeared.
type Call struct {
	Function string   `json:"function" msgpack:"f"`
	Keywords []string `json:"keywords" msgpack:"k"`
}

// Options control the looser corners of extraction.
type Options struct {
	// RequireParens rejects candidates whose call text has no '('.
	// When false, "plt.show" yields Call{Function: "show"} with no keywords.
	RequireParens bool
	// TrimParens drops the enclosing '(' and ')' from the argument text.
	// When false, a leading keyword keeps the paren: "plt.legend(loc=1)"
	// yields "(loc".
	TrimParens bool
}

// Extract parses one line. ok is false when the line does not contain a
// call of the target shape.
func Extract(prefix, line string, opts Options) (Call, bool) {
	if prefix == "" {
		return Call{}, false
	}
	at := utils.IndexFold(line, prefix+".")
	if at < 0 {
		return Call{}, false
	}
	callText := line[at+utils.MatchFoldLen(line[at:], prefix+"."):]

	open := strings.IndexByte(callText, '(')
	if open < 0 && opts.RequireParens {
		return Call{}, false
	}

	name := callText
	if open >= 0 {
		name = callText[:open]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Call{}, false
	}

	return Call{Function: name, Keywords: keywords(callText, open, opts.TrimParens)}, true
}

// keywords pulls keyword names out of the text from the first '(' through
// the last ')'. Positional arguments are dropped; keyword names are not
// deduplicated or checked against an identifier pattern.
func keywords(callText string, open int, trim bool) []string {
	out := []string{}
	if open < 0 {
		return out
	}
	closing := strings.LastIndexByte(callText, ')')
	if closing < open {
		return out
	}

	args := callText[open : closing+1]
	if trim {
		args = callText[open+1 : closing]
	}
	for _, token := range strings.Split(args, ",") {
		eq := strings.IndexByte(token, '=')
		if eq < 0 {
			continue
		}
		kw := utils.StripSpace(token[:eq+1], "=")
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}
