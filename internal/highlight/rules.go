package highlight

import (
	"regexp"
	"strings"
)

// A tokenRule styles one submatch group of a regular expression. Rules are
// applied in the order they appear in their table; where two rules claim
// overlapping unprotected text, the one applied later wins. That ordering
// is a documented contract, pinned by TestRuleOrderExplicit: reordering a
// table changes colors.
type tokenRule struct {
	name  string
	re    *regexp.Regexp
	group int
	style func(*Palette) *Style
}

func wordRule(name string, words []string, style func(*Palette) *Style) tokenRule {
	return tokenRule{
		name:  name,
		re:    regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`),
		style: style,
	}
}

// pythonRules is the fixed token rule table for Python, applied after
// string and comment extraction.
var pythonRules = []tokenRule{
	{
		name:  "number",
		re:    regexp.MustCompile(`\b(?:0[xX][0-9a-fA-F_]+|0[oO][0-7_]+|0[bB][01_]+|\d[\d_]*(?:\.[\d_]*)?(?:[eE][+-]?\d+)?[jJ]?)\b|\B\.\d[\d_]*(?:[eE][+-]?\d+)?[jJ]?\b`),
		style: func(p *Palette) *Style { return &p.Number },
	},
	{
		name:  "definition",
		re:    regexp.MustCompile(`\b(?:class|def)\s+([A-Za-z_]\w*)`),
		group: 1,
		style: func(p *Palette) *Style { return &p.Definition },
	},
	{
		name:  "dunder",
		re:    regexp.MustCompile(`\b__\w+__\b`),
		style: func(p *Palette) *Style { return &p.Dunder },
	},
	wordRule("import", pythonImportKeywords, func(p *Palette) *Style { return &p.Import }),
	wordRule("keyword", pythonControlKeywords, func(p *Palette) *Style { return &p.Keyword }),
	wordRule("constant", pythonConstants, func(p *Palette) *Style { return &p.Constant }),
	wordRule("builtin", pythonBuiltins, func(p *Palette) *Style { return &p.Builtin }),
	wordRule("framework", pythonFrameworkNames, func(p *Palette) *Style { return &p.Framework }),
	wordRule("exception", pythonExceptions, func(p *Palette) *Style { return &p.Exception }),
	wordRule("identity", pythonIdentityNames, func(p *Palette) *Style { return &p.Identity }),
	wordRule("typehint", pythonTypeHintNames, func(p *Palette) *Style { return &p.TypeHint }),
	{
		// Applied after the word rules so a decorator built from a known
		// name (@staticmethod, @property) still reads as a decorator.
		name:  "decorator",
		re:    regexp.MustCompile(`@[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*`),
		style: func(p *Palette) *Style { return &p.Decorator },
	},
	{
		name:  "operator",
		re:    regexp.MustCompile(`[-+*/%=<>!&|^~]+`),
		style: func(p *Palette) *Style { return &p.Operator },
	},
	{
		name:  "placeholder",
		re:    regexp.MustCompile(`%(?:\([A-Za-z_]\w*\))?[-+ #0]*\d*(?:\.\d+)?[sdifgrxXeE%]|\{[A-Za-z0-9_.\[\]!:%+-]*\}`),
		style: func(p *Palette) *Style { return &p.Placeholder },
	},
}

// melRules is the fixed token rule table for MEL.
var melRules = []tokenRule{
	{
		name:  "number",
		re:    regexp.MustCompile(`\b(?:0[xX][0-9a-fA-F]+|\d+(?:\.\d*)?(?:[eE][+-]?\d+)?)\b|\B\.\d+(?:[eE][+-]?\d+)?\b`),
		style: func(p *Palette) *Style { return &p.Number },
	},
	{
		name:  "procname",
		re:    regexp.MustCompile(`\bproc\s+(?:(?:string|int|float|vector|matrix)(?:\[\])?\s+)?([A-Za-z_]\w*)`),
		group: 1,
		style: func(p *Palette) *Style { return &p.Definition },
	},
	wordRule("keyword", melKeywords, func(p *Palette) *Style { return &p.Keyword }),
	wordRule("command", melCommands, func(p *Palette) *Style { return &p.Builtin }),
	{
		name:  "variable",
		re:    regexp.MustCompile(`\$[A-Za-z_]\w*`),
		style: func(p *Palette) *Style { return &p.Variable },
	},
	{
		name:  "operator",
		re:    regexp.MustCompile(`[-+*/%=<>!&|^~]+`),
		style: func(p *Palette) *Style { return &p.Operator },
	},
}

// applyRule styles every match of the rule in line, skipping characters the
// protection mask has already finalized.
func applyRule(line string, rule tokenRule, pal *Palette, slots []*Style, protected []bool) {
	matches := rule.re.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return
	}
	style := rule.style(pal)
	for _, m := range matches {
		s, e := m[2*rule.group], m[2*rule.group+1]
		if s < 0 {
			continue
		}
		for k := s; k < e; k++ {
			if !protected[k] {
				slots[k] = style
			}
		}
	}
}

// overlayError decorates the slots of a line carrying a lint error with a
// curly underline. The decoration is derived from each character's current
// style, so token coloring shows through; it is never a plain overwrite.
// The span runs from the annotated column (or the first non-blank
// character, if the column is unknown) through the last non-blank character.
func overlayError(pal *Palette, line string, ann Annotation, slots []*Style) {
	line = strings.TrimSuffix(line, "\n")
	first, last := -1, -1
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}
	start := first
	if ann.Column >= 1 {
		start = ann.Column - 1
		if start > last {
			start = last
		}
		if start < 0 {
			start = 0
		}
	}
	derived := make(map[*Style]*Style)
	for k := start; k <= last && k < len(slots); k++ {
		base := slots[k]
		d, ok := derived[base]
		if !ok {
			d = deriveErrorStyle(pal, base)
			derived[base] = d
		}
		slots[k] = d
	}
}

// deriveErrorStyle copies base (or the zero style) and adds the error
// underline decoration from the palette.
func deriveErrorStyle(pal *Palette, base *Style) *Style {
	out := Style{}
	if base != nil {
		out = *base
	}
	out.CurlyUnderline = true
	if c := pal.Error.UnderlineColor; c != nil {
		out.UnderlineColor = c
	} else {
		out.UnderlineColor = pal.Error.Foreground
	}
	return &out
}
