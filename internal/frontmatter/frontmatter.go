// Package frontmatter splits page sources into YAML attributes and a body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the parsed form of a page source.
type FrontMatter struct {
	Attributes map[string]any
	Body       string
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Parse extracts attributes and body from content. A document without a
// leading `---` line has no attributes and its whole content is the body.
func Parse(content []byte) (FrontMatter, error) {
	fm, body, _, err := Split(content)
	if err != nil {
		return FrontMatter{}, err
	}
	attrs, err := ParseYAML(fm)
	if err != nil {
		return FrontMatter{}, fmt.Errorf("parse yaml front matter: %w", err)
	}
	return FrontMatter{Attributes: attrs, Body: string(body)}, nil
}

// Split separates YAML frontmatter (`---` delimited) from the body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line has no trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Fingerprint returns the content fingerprint of a page source, computed over
// its raw front matter and body. Sources that fail to split are fingerprinted
// as a whole.
func Fingerprint(content []byte) string {
	fm, body, _, err := Split(content)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", string(content))
	}
	return mdfp.CalculateFingerprintFromParts(string(bytes.TrimRight(fm, "\r\n")), string(body))
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
