// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"strconv"
	"strings"
)

// screens are the utility framework's named breakpoints. Other widths use
// an arbitrary min-width variant.
var screens = map[int]string{
	640:  "sm",
	768:  "md",
	1024: "lg",
	1280: "xl",
	1536: "2xl",
}

func variant(bp int) string {
	if s, ok := screens[bp]; ok {
		return s + ":"
	}
	return "min-[" + strconv.Itoa(bp) + "px]:"
}

// assignUtility sets each element's class to its utility classes.
func assignUtility(e *element) {
	var cls []string
	for _, d := range e.base {
		cls = append(cls, utility(d))
	}
	if len(e.wide) > 0 {
		v := variant(e.bp)
		for _, d := range e.wide {
			cls = append(cls, v+utility(d))
		}
	}
	e.class = strings.Join(cls, " ")
	for _, c := range e.children {
		assignUtility(c)
	}
}

// arbitrary wraps a value for use inside brackets, where spaces are
// written as underscores.
func arbitrary(v string) string {
	return "[" + strings.ReplaceAll(v, " ", "_") + "]"
}

var keywordClasses = map[string]string{
	"display:flex":              "flex",
	"display:grid":              "grid",
	"display:block":             "block",
	"flex-direction:row":        "flex-row",
	"flex-direction:column":     "flex-col",
	"align-items:flex-start":    "items-start",
	"align-items:center":        "items-center",
	"align-items:flex-end":      "items-end",
	"align-items:stretch":       "items-stretch",
	"position:relative":         "relative",
	"position:absolute":         "absolute",
	"width:100%":                "w-full",
	"height:auto":               "h-auto",
	"border-style:solid":        "border-solid",
	"transform-origin:top left": "origin-top-left",
	"text-align:center":         "text-center",
	"text-align:right":          "text-right",
	"text-align:justify":        "text-justify",
	"object-fit:cover":          "object-cover",
}

var valuePrefixes = map[string]string{
	"gap":              "gap-",
	"column-gap":       "gap-x-",
	"row-gap":          "gap-y-",
	"padding-top":      "pt-",
	"padding-right":    "pr-",
	"padding-bottom":   "pb-",
	"padding-left":     "pl-",
	"left":             "left-",
	"top":              "top-",
	"width":            "w-",
	"max-width":        "max-w-",
	"height":           "h-",
	"background-color": "bg-",
	"border-width":     "border-",
	"border-color":     "border-",
	"border-radius":    "rounded-",
	"box-shadow":       "shadow-",
	"opacity":          "opacity-",
	"font-family":      "font-",
	"font-size":        "text-",
	"font-weight":      "font-",
	"line-height":      "leading-",
	"letter-spacing":   "tracking-",
	"color":            "text-",
}

// utility translates one declaration into a utility class.
func utility(d decl) string {
	if c, ok := keywordClasses[d.Prop+":"+d.Value]; ok {
		return c
	}
	switch d.Prop {
	case "grid-template-columns":
		var n int
		if _, err := fmt.Sscanf(d.Value, "repeat(%d,", &n); err == nil && n >= 1 && n <= 12 {
			return "grid-cols-" + strconv.Itoa(n)
		}
		return "grid-cols-" + arbitrary(strings.ReplaceAll(d.Value, ", ", ","))
	case "filter":
		if v, ok := strings.CutPrefix(d.Value, "blur("); ok {
			return "blur-" + arbitrary(strings.TrimSuffix(v, ")"))
		}
	case "transform":
		if v, ok := strings.CutPrefix(d.Value, "rotate("); ok {
			return "rotate-" + arbitrary(strings.TrimSuffix(v, ")"))
		}
	}
	if p, ok := valuePrefixes[d.Prop]; ok {
		return p + arbitrary(d.Value)
	}
	return arbitrary(d.Prop + ":" + d.Value)
}
