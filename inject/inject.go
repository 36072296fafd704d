// Package inject applies the bootstrap markup and Content-Security-Policy
// substitutions to HTML entry points of a hybrid application shell.
//
// All substitutions target literal anchors in the document text; no HTML is
// parsed into a DOM. Each step replaces the first occurrence only, and a
// missing anchor is a silent no-op.
package inject

import (
	"regexp"
	"strings"

	"github.com/c360studio/shellprep/csp"
	"github.com/c360studio/shellprep/template"
)

// Placeholder comments authored into source HTML, replaced at build time.
const (
	ScriptMarker = "<!-- inject:cordova-script -->"
	CSPMarker    = "<!-- inject:cordova-csp -->"
)

// cordovaScriptTag replaces ScriptMarker. The platform runtime supplies
// cordova.js inside the packaged app.
const cordovaScriptTag = `<script src="cordova.js" async></script>`

// baseTagRe matches a <base> tag with any attribute/whitespace variant. The
// bootstrap fragment resolves relative paths itself, so a <base> tag would
// conflict with the packaged-app environment.
var baseTagRe = regexp.MustCompile(`(?i)<base\b[^>]*>`)

// Config is the caller input for one pipeline run. It is never mutated after
// being passed in.
type Config struct {
	// TemplatePath locates the injection template holding the four
	// delimited fragments.
	TemplatePath string

	// Source is the entry document the shell boots from. The canonical
	// local document whitelists the file: scheme in connect-src; any other
	// value (e.g. a dev server origin) is whitelisted verbatim.
	Source string

	// ConnectSrc, DefaultSrc and FrameSrc extend the corresponding CSP
	// directives, order preserved.
	ConnectSrc []string
	DefaultSrc []string
	FrameSrc   []string
}

// step is one ordered substitution applied to a document.
type step func(string) string

// Injector applies the ordered substitution steps to HTML text. Fragment
// extraction and CSP composition happen once, in New; Apply is pure text
// work with no I/O.
type Injector struct {
	steps  []step
	cspTag string
}

// New extracts the template fragments and composes the CSP tag exactly once,
// then returns a reusable Injector. A template error fails the whole run
// before any document is processed.
func New(cfg Config) (*Injector, error) {
	if cfg.Source == "" {
		cfg.Source = csp.DefaultSourceDoc
	}

	fragments, err := template.Extract(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	cspTag := csp.Compose(cfg.Source, cfg.ConnectSrc, cfg.DefaultSrc, cfg.FrameSrc)

	steps := []step{
		spliceAfter("<head>", fragments.HeadStart),
		spliceBefore("</head>", fragments.HeadEnd),
		spliceAfter("<body>", fragments.BodyStart),
		spliceBefore("</body>", fragments.BodyEnd),
		stripFirst(baseTagRe),
		replaceMarker(ScriptMarker, cordovaScriptTag),
		replaceMarker(CSPMarker, cspTag),
	}

	return &Injector{steps: steps, cspTag: cspTag}, nil
}

// CSPTag returns the composed meta tag, fixed for the lifetime of the
// Injector.
func (in *Injector) CSPTag() string {
	return in.cspTag
}

// Apply runs the ordered substitutions on a single HTML payload.
func (in *Injector) Apply(html string) string {
	for _, s := range in.steps {
		html = s(html)
	}
	return html
}

// spliceAfter inserts fragment immediately after the first occurrence of tag,
// followed by a single separating space.
func spliceAfter(tag, fragment string) step {
	return func(html string) string {
		return replaceFirst(html, tag, tag+fragment+" ")
	}
}

// spliceBefore inserts fragment immediately before the first occurrence of
// tag.
func spliceBefore(tag, fragment string) step {
	return func(html string) string {
		return replaceFirst(html, tag, fragment+tag)
	}
}

// stripFirst removes the first match of re.
func stripFirst(re *regexp.Regexp) step {
	return func(html string) string {
		loc := re.FindStringIndex(html)
		if loc == nil {
			return html
		}
		return html[:loc[0]] + html[loc[1]:]
	}
}

// replaceMarker swaps the first occurrence of a placeholder comment for the
// generated markup.
func replaceMarker(marker, markup string) step {
	return func(html string) string {
		return replaceFirst(html, marker, markup)
	}
}

// replaceFirst replaces the first occurrence of old with new. Absence of old
// leaves the document intact.
func replaceFirst(html, old, new string) string {
	return strings.Replace(html, old, new, 1)
}
