// Package csp composes the Content-Security-Policy meta tag injected into
// prepared HTML entry points.
//
// The policy is deliberately not validated against the CSP grammar and
// caller-supplied origin tokens are passed through verbatim, in order and
// without deduplication. Callers are trusted to supply well-formed tokens.
package csp

import (
	"fmt"
	"strings"
)

// DefaultSourceDoc is the canonical local entry document. When the configured
// source equals it, connect-src whitelists the file: scheme; otherwise the
// source value itself (e.g. a local dev server origin) is whitelisted.
const DefaultSourceDoc = "index.html"

// Directive names, in serialization order.
const (
	DefaultSrc = "default-src"
	MediaSrc   = "media-src"
	ImgSrc     = "img-src"
	FontSrc    = "font-src"
	StyleSrc   = "style-src"
	ConnectSrc = "connect-src"
	FrameSrc   = "frame-src"
	ChildSrc   = "child-src"
)

// Baseline directive values for the packaged-app environment.
var (
	defaultSrcBase = []string{
		"'self'", "data:", "gap:", "https://ssl.gstatic.com",
		"'unsafe-eval'", "'unsafe-inline'",
		"https://www.google-analytics.com",
		"https://www.youtube.com",
		"https://s.ytimg.com",
	}
	frameSrcBase = []string{"https://www.youtube.com"}
)

// Fixed directive values independent of caller input.
const (
	mediaSrcValue = "*"
	imgSrcValue   = "'self' data: content:"
	fontSrcValue  = "'self' data:"
	styleSrcValue = "'self' 'unsafe-inline'"
)

// directive pairs a CSP directive name with its serialized value.
type directive struct {
	name  string
	value string
}

// ComposePolicy builds the eight-directive policy string. Directive order is
// fixed; values preserve caller order with no deduplication.
func ComposePolicy(source string, connectSrc, defaultSrc, frameSrc []string) string {
	sourceToken := source
	if source == DefaultSourceDoc {
		sourceToken = "file:"
	}

	connectValue := joinValues(append([]string{"self:", sourceToken}, connectSrc...), nil)
	defaultValue := joinValues(defaultSrcBase, defaultSrc)
	frameValue := joinValues(frameSrcBase, frameSrc)

	directives := []directive{
		{DefaultSrc, defaultValue},
		{MediaSrc, mediaSrcValue},
		{ImgSrc, imgSrcValue},
		{FontSrc, fontSrcValue},
		{StyleSrc, styleSrcValue},
		{ConnectSrc, connectValue},
		{FrameSrc, frameValue},
		{ChildSrc, frameValue},
	}

	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		parts = append(parts, d.name+" "+d.value)
	}
	return strings.Join(parts, ";")
}

// Compose wraps the policy in the meta tag spliced into HTML entry points.
func Compose(source string, connectSrc, defaultSrc, frameSrc []string) string {
	policy := ComposePolicy(source, connectSrc, defaultSrc, frameSrc)
	return fmt.Sprintf(`<meta http-equiv="Content-Security-Policy" content="%s">`, policy)
}

// joinValues space-joins base entries followed by caller entries.
func joinValues(base, extra []string) string {
	values := make([]string, 0, len(base)+len(extra))
	values = append(values, base...)
	values = append(values, extra...)
	return strings.Join(values, " ")
}
