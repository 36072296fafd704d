// Package template extracts bootstrap markup fragments from an injection
// template file.
//
// The template is a plain text file containing four delimited regions:
//
//	<head-start>...</head-start>
//	<head-end>...</head-end>
//	<body-start>...</body-start>
//	<body-end>...</body-end>
//
// The regions may appear in any order. All four are mandatory; if a tag is
// duplicated, the first occurrence wins.
package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Pre-compiled regexes to avoid runtime compilation per extraction.
// Non-greedy with dot-matches-newline so fragments can span lines.
var (
	headStartRe = regexp.MustCompile(`(?s)<head-start>(.*?)</head-start>`)
	headEndRe   = regexp.MustCompile(`(?s)<head-end>(.*?)</head-end>`)
	bodyStartRe = regexp.MustCompile(`(?s)<body-start>(.*?)</body-start>`)
	bodyEndRe   = regexp.MustCompile(`(?s)<body-end>(.*?)</body-end>`)
)

// FragmentSet holds the four markup fragments spliced into each HTML entry
// point. It is created once per pipeline run and never mutated afterwards.
type FragmentSet struct {
	// HeadStart is spliced immediately after the opening <head> tag.
	HeadStart string

	// HeadEnd is spliced immediately before the closing </head> tag.
	HeadEnd string

	// BodyStart is spliced immediately after the opening <body> tag.
	BodyStart string

	// BodyEnd is spliced immediately before the closing </body> tag.
	BodyEnd string
}

// NotFoundError indicates the template file is missing, unreadable, or empty.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("injection template not found or empty: %s", e.Path)
}

// MalformedError indicates the template was read but one or more of the four
// required delimiter tags is absent.
type MalformedError struct {
	Path    string
	Missing []string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("injection template %s missing required tags: %s",
		e.Path, strings.Join(e.Missing, ", "))
}

// Extract reads the template at path and captures the four delimited regions.
// It is a pure function of the file content: no partial FragmentSet is ever
// returned.
func Extract(path string) (*FragmentSet, error) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, &NotFoundError{Path: path}
	}

	content := string(data)
	set := &FragmentSet{}

	regions := []struct {
		tag string
		re  *regexp.Regexp
		dst *string
	}{
		{"head-start", headStartRe, &set.HeadStart},
		{"head-end", headEndRe, &set.HeadEnd},
		{"body-start", bodyStartRe, &set.BodyStart},
		{"body-end", bodyEndRe, &set.BodyEnd},
	}

	var missing []string
	for _, r := range regions {
		m := r.re.FindStringSubmatch(content)
		if m == nil {
			missing = append(missing, r.tag)
			continue
		}
		*r.dst = m[1]
	}

	if len(missing) > 0 {
		return nil, &MalformedError{Path: path, Missing: missing}
	}

	return set, nil
}
