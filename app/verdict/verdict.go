// Package verdict maps raw verdict strings, in either the legacy
// (complete/in_progress/failed) or the fact-check taxonomy, onto a fixed set
// of display categories.
package verdict

import (
	"strings"

	"golang.org/x/text/cases"
)

type Category string

const (
	True         Category = "True"
	False        Category = "False"
	TechError    Category = "Tech Error"
	Close        Category = "Close"
	Misleading   Category = "Misleading"
	Unverifiable Category = "Unverifiable"
	Unclear      Category = "Unclear"
)

// Categories lists every canonical category in display order.
var Categories = []Category{True, False, TechError, Close, Misleading, Unverifiable, Unclear}

type Result struct {
	Category    Category `json:"category"`
	Label       string   `json:"label"`
	Class       string   `json:"class"`
	Explanation string   `json:"explanation"`
	Raw         string   `json:"raw"`
	Legacy      bool     `json:"legacy"`
}

type entry struct {
	category Category
	legacy   bool
}

var table = map[string]entry{
	"true":         {True, false},
	"false":        {False, false},
	"tech error":   {TechError, false},
	"close":        {Close, false},
	"misleading":   {Misleading, false},
	"unverifiable": {Unverifiable, false},
	"unclear":      {Unclear, false},

	"complete":    {True, true},
	"failed":      {False, true},
	"in progress": {Unclear, true},
	"pending":     {Unclear, true},
	"complicated": {Unclear, true},
}

var classes = map[Category]string{
	True:         "verdict-true",
	False:        "verdict-false",
	TechError:    "verdict-tech-error",
	Close:        "verdict-close",
	Misleading:   "verdict-misleading",
	Unverifiable: "verdict-unverifiable",
	Unclear:      "verdict-unclear",
}

var explanations = map[Category]string{
	True:         "The claim holds up against the available evidence.",
	False:        "The evidence contradicts the claim.",
	TechError:    "Technically inaccurate, though the substance is correct.",
	Close:        "Nearly accurate, with minor discrepancies.",
	Misleading:   "Accurate in part but framed to mislead.",
	Unverifiable: "There is not enough public evidence to check the claim.",
	Unclear:      "Still in progress or the evidence is mixed.",
}

var folder = cases.Fold()

// Normalize never fails: empty and unknown input yields Unclear.
func Normalize(raw string) Result {
	e, ok := table[key(raw)]
	if !ok {
		e = entry{category: Unclear}
	}

	return Result{
		Category:    e.category,
		Label:       string(e.category),
		Class:       classes[e.category],
		Explanation: explanations[e.category],
		Raw:         raw,
		Legacy:      e.legacy,
	}
}

// IsTerminal reports whether the verdict settles the claim for good.
func IsTerminal(raw string) bool {
	switch Normalize(raw).Category {
	case True, False:
		return true
	}
	return false
}

func key(raw string) string {
	s := folder.String(raw)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
