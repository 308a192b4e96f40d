// Package device classifies the client the editor is running for so the
// layout and control sizes can be chosen.
package device

import (
	"fmt"
	"strings"

	"github.com/mileusna/useragent"
)

// Category is the coarse device class used to pick layout constants.
type Category int

const (
	Desktop Category = iota
	Tablet
	Mobile
)

func (c Category) String() string {
	switch c {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// Touch reports whether the category uses the touch layout.
func (c Category) Touch() bool { return c != Desktop }

// ParseCategory converts a category name. "auto" and "" are rejected so the
// caller can fall back to Classify.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mobile":
		return Mobile, nil
	case "tablet":
		return Tablet, nil
	case "desktop":
		return Desktop, nil
	}
	return Desktop, fmt.Errorf("unknown device category %q", s)
}

// Rule selects how the width thresholds interact with the parsed user agent.
type Rule int

const (
	// RuleWidth forces desktop for every width above TabletMaxWidth.
	RuleWidth Rule = iota
	// RuleUserAgent lets a tablet or mobile user agent win on wide screens.
	RuleUserAgent
)

// ParseRule converts a rule name from configuration. An empty name selects
// RuleWidth.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "width":
		return RuleWidth, nil
	case "ua", "useragent", "user-agent":
		return RuleUserAgent, nil
	}
	return RuleWidth, fmt.Errorf("unknown device rule %q", s)
}

func (r Rule) String() string {
	if r == RuleUserAgent {
		return "ua"
	}
	return "width"
}

const (
	MobileMaxWidth = 896
	TabletMaxWidth = 897
)

// Kind is the device type reported for a user agent.
type Kind string

const (
	KindUnknown  Kind = ""
	KindMobile   Kind = "mobile"
	KindTablet   Kind = "tablet"
	KindWearable Kind = "wearable"
	KindConsole  Kind = "console"
	KindDesktop  Kind = "desktop"
)

var (
	wearableTokens = []string{"watch", "wear os", "wearos", "glass"}
	consoleTokens  = []string{"playstation", "xbox", "nintendo", "ouya"}
)

// ParseKind extracts the device type from a user-agent string.
func ParseKind(userAgent string) Kind {
	lower := strings.ToLower(userAgent)
	for _, tok := range wearableTokens {
		if strings.Contains(lower, tok) {
			return KindWearable
		}
	}
	for _, tok := range consoleTokens {
		if strings.Contains(lower, tok) {
			return KindConsole
		}
	}
	ua := useragent.Parse(userAgent)
	switch {
	case ua.Tablet:
		return KindTablet
	case ua.Mobile:
		return KindMobile
	case ua.Desktop:
		return KindDesktop
	}
	return KindUnknown
}

// Classify returns the category for a user agent rendered at width pixels.
func Classify(userAgent string, width int, rule Rule) Category {
	kind := ParseKind(userAgent)
	var c Category
	switch {
	case width <= MobileMaxWidth || kind == KindWearable || kind == KindMobile:
		c = Mobile
	case width <= TabletMaxWidth || kind == KindTablet || kind == KindConsole:
		c = Tablet
	default:
		c = Desktop
	}
	if rule == RuleWidth && width > TabletMaxWidth {
		return Desktop
	}
	return c
}
