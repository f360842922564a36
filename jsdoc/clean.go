package jsdoc

import (
	"strings"
)

// typeOnlyTags carry type information already expressed by the declaration.
var typeOnlyTags = map[string]bool{
	"type":          true,
	"const":         true,
	"constructor":   true,
	"extends":       true,
	"implements":    true,
	"interface":     true,
	"record":        true,
	"enum":          true,
	"typedef":       true,
	"template":      true,
	"override":      true,
	"private":       true,
	"protected":     true,
	"public":        true,
	"package":       true,
	"export":        true,
	"struct":        true,
	"dict":          true,
	"unrestricted":  true,
	"nocollapse":    true,
	"final":         true,
	"this":          true,
	"suppress":      true,
	"define":        true,
	"inheritDoc":    true,
	"nosideeffects": true,
	"externs":       true,
	"fileoverview":  true,
	"provideGoog":   true,
}

type tag struct {
	name  string
	param string
	lines []string
}

// Clean strips comment delimiters and filters tags:
//   - type-only tags are removed
//   - @param is kept only with a description, re-ordered to params; described
//     entries naming no emitted parameter follow in source order
//   - @return is kept only with a description
//
// Type annotations inside kept tags are removed. An empty result means the
// comment should not be emitted.
func Clean(comment string, params []string) []string {
	body := stripDelimiters(comment)

	var desc []string
	var tags []*tag
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			tags = append(tags, parseTag(trimmed))
			continue
		}
		if len(tags) > 0 {
			tags[len(tags)-1].lines = append(tags[len(tags)-1].lines, line)
			continue
		}
		desc = append(desc, line)
	}

	out := trimBlank(desc)

	byParam := make(map[string]*tag)
	var described, others []*tag
	for _, t := range tags {
		if typeOnlyTags[t.name] {
			continue
		}
		t.lines = trimBlank(t.lines)
		switch t.name {
		case "param":
			if len(t.lines) > 0 && t.param != "" {
				byParam[t.param] = t
				described = append(described, t)
			}
		case "return", "returns":
			if len(t.lines) > 0 {
				others = append(others, t)
			}
		default:
			others = append(others, t)
		}
	}

	emitted := make(map[string]bool, len(params))
	for _, name := range params {
		if t, ok := byParam[name]; ok && !emitted[name] {
			emitted[name] = true
			out = append(out, renderTag(t)...)
		}
	}
	for _, t := range described {
		if !emitted[t.param] {
			emitted[t.param] = true
			out = append(out, renderTag(byParam[t.param])...)
		}
	}
	for _, t := range others {
		out = append(out, renderTag(t)...)
	}
	return out
}

func renderTag(t *tag) []string {
	head := "@" + t.name
	if t.param != "" {
		head += " " + t.param
	}
	if len(t.lines) == 0 {
		return []string{head}
	}
	out := []string{head + " " + strings.TrimSpace(t.lines[0])}
	return append(out, t.lines[1:]...)
}

// parseTag splits `@name {type} param description`.
func parseTag(line string) *tag {
	rest := strings.TrimPrefix(line, "@")
	name := rest
	if i := strings.IndexAny(rest, " \t{"); i >= 0 {
		name, rest = rest[:i], strings.TrimSpace(rest[i:])
	} else {
		rest = ""
	}
	t := &tag{name: name}

	if strings.HasPrefix(rest, "{") {
		rest = strings.TrimSpace(skipBraces(rest))
	}

	if name == "param" {
		t.param, rest = splitWord(rest)
		t.param = strings.Trim(t.param, "[]")
		if i := strings.IndexByte(t.param, '='); i >= 0 {
			t.param = t.param[:i]
		}
	}
	if rest != "" {
		t.lines = []string{rest}
	}
	return t
}

// skipBraces drops a leading balanced {...} group.
func skipBraces(s string) string {
	depth := 0
	for i, c := range s {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i+1:]
			}
		}
	}
	return ""
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

// stripDelimiters removes /** */ and leading asterisks, keeping relative indentation.
func stripDelimiters(comment string) []string {
	text := strings.TrimSpace(comment)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = strings.TrimPrefix(trimmed, "*")
			if strings.HasPrefix(trimmed, " ") {
				trimmed = trimmed[1:]
			}
			line = trimmed
		} else {
			line = trimmed
		}
		out = append(out, line)
	}
	return out
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// Format renders blocks indented by indent: JSDoc blocks as /** */ around
// their cleaned lines, other comments as written.
func Format(blocks []Block, indent string) string {
	var b strings.Builder
	for _, blk := range blocks {
		if len(blk.Lines) == 0 {
			continue
		}
		if !blk.JSDoc {
			for _, line := range blk.Lines {
				b.WriteString(indent + line + "\n")
			}
			continue
		}
		b.WriteString(indent + "/**\n")
		for _, line := range blk.Lines {
			if line == "" {
				b.WriteString(indent + " *\n")
				continue
			}
			b.WriteString(indent + " * " + line + "\n")
		}
		b.WriteString(indent + " */\n")
	}
	return b.String()
}
