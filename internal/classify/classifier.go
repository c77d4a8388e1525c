// Package classify decides whether a ticket's summary result is one of the
// known auto-response templates.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"csreport/internal/domain"
)

type Category struct {
	Label   string
	Aliases []string
}

type Profile struct {
	Mode       domain.MatchMode
	Categories []Category // exact mode
	Terms      []string   // substring and prefix modes
}

type Result struct {
	// Target is the text that was compared: the unwrapped value.result when
	// the envelope parsed, the trimmed raw text otherwise.
	Target       string
	Matched      bool
	Category     string   // canonical label, exact mode only
	Terms        []string // configured terms found literally in Target
	FromEnvelope bool
	ParseErr     *domain.ParseError
}

type Classifier struct {
	mode       domain.MatchMode
	lookup     map[string]string
	categories []string
	terms      []string
	prefixes   []string
}

func New(p Profile) (*Classifier, error) {
	if !p.Mode.Valid() {
		return nil, fmt.Errorf("unknown match mode %q", p.Mode)
	}
	c := &Classifier{mode: p.Mode}

	switch p.Mode {
	case domain.ModeExact:
		if len(p.Categories) == 0 {
			return nil, errors.New("exact mode needs at least one category")
		}
		c.lookup = make(map[string]string)
		for _, cat := range p.Categories {
			label := strings.TrimSpace(cat.Label)
			if label == "" {
				return nil, errors.New("category label must not be empty")
			}
			for _, key := range append([]string{label}, cat.Aliases...) {
				key = strings.TrimSpace(key)
				if key == "" {
					continue
				}
				for _, k := range []string{key, colonVariant(key)} {
					if k == "" {
						continue
					}
					if prev, ok := c.lookup[k]; ok && prev != label {
						return nil, fmt.Errorf("label %q maps to both %q and %q", k, prev, label)
					}
					c.lookup[k] = label
				}
			}
			if !contains(c.categories, label) {
				c.categories = append(c.categories, label)
			}
		}
	default:
		for _, t := range p.Terms {
			if t == "" || contains(c.terms, t) {
				continue
			}
			c.terms = append(c.terms, t)
		}
		if len(c.terms) == 0 {
			return nil, fmt.Errorf("%s mode needs at least one term", p.Mode)
		}
		if p.Mode == domain.ModePrefix {
			for _, t := range c.terms {
				for _, k := range []string{t, colonVariant(t)} {
					if k != "" && !contains(c.prefixes, k) {
						c.prefixes = append(c.prefixes, k)
					}
				}
			}
		}
	}
	return c, nil
}

func (c *Classifier) Mode() domain.MatchMode { return c.mode }

// Categories returns the canonical labels in configured order.
func (c *Classifier) Categories() []string { return append([]string(nil), c.categories...) }

// Terms returns the configured keywords or prefixes in configured order.
func (c *Classifier) Terms() []string { return append([]string(nil), c.terms...) }

// ClassifyValue coerces a non-string cell before classifying it.
func (c *Classifier) ClassifyValue(v any) Result {
	return c.Classify(Text(v))
}

// Classify never fails: a broken envelope falls back to the raw text and is
// recorded on Result.ParseErr.
func (c *Classifier) Classify(raw string) Result {
	var res Result
	target := strings.TrimSpace(raw)
	if strings.HasPrefix(target, "{") {
		inner, err := UnwrapEnvelope(target)
		var perr *domain.ParseError
		switch {
		case err == nil:
			target = inner
			res.FromEnvelope = true
		case errors.As(err, &perr):
			res.ParseErr = perr
		}
	}
	res.Target = target
	if target == "" {
		return res
	}

	switch c.mode {
	case domain.ModeExact:
		if label, ok := c.lookup[target]; ok {
			res.Matched = true
			res.Category = label
		}
	case domain.ModeSubstring:
		for _, t := range c.terms {
			if strings.Contains(target, t) {
				res.Terms = append(res.Terms, t)
			}
		}
		res.Matched = len(res.Terms) > 0
	case domain.ModePrefix:
		for _, t := range c.terms {
			if strings.HasPrefix(target, t) {
				res.Terms = append(res.Terms, t)
			}
		}
		for _, p := range c.prefixes {
			if strings.HasPrefix(target, p) {
				res.Matched = true
				break
			}
		}
	}
	return res
}

// colonVariant toggles the single space before the first colon:
// "자동답변: x" <-> "자동답변 : x". It returns "" when s has no colon.
func colonVariant(s string) string {
	i := strings.Index(s, ":")
	if i < 0 {
		return ""
	}
	if i > 0 && s[i-1] == ' ' {
		return s[:i-1] + s[i:]
	}
	return s[:i] + " " + s[i:]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
