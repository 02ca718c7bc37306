// Package formdata decodes multipart/form-data request bodies.
//
// The parser works on the raw body bytes and never converts them to a string
// before a part's payload has been isolated, so binary uploads come back
// byte-identical. It accepts CRLF and bare LF line breaks.
//
// A payload that itself contains the delimiter "--<boundary>" ends at that
// point. Clients generate boundaries that do not occur in the payload.
package formdata

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
)

var (
	ErrNotMultipart = errors.New("content type must be multipart/form-data")
	ErrNoBoundary   = errors.New("no boundary found in multipart content type")
	ErrNoFile       = errors.New("no file provided")
	ErrMalformed    = errors.New("malformed multipart body")
)

// Form is the decoded body: the first file part plus every ordinary field.
type Form struct {
	FileName    string // base name as declared by the client
	ContentType string // declared content type of the file part, may be empty
	Data        []byte // file payload; aliases the parsed body
	Fields      map[string]string
}

// Boundary extracts the boundary token from a Content-Type header value.
func Boundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return "", ErrNotMultipart
	}
	b := params["boundary"]
	if b == "" {
		return "", ErrNoBoundary
	}
	return b, nil
}

// Parse decodes body according to the boundary in contentType.
// It fails with ErrNoFile when no part declares a non-empty filename.
func Parse(contentType string, body []byte) (*Form, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return nil, err
	}
	p := &parser{
		body:  body,
		delim: []byte("--" + boundary),
		form:  &Form{Fields: make(map[string]string)},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if p.form.FileName == "" {
		return nil, ErrNoFile
	}
	return p.form, nil
}

type state int

const (
	seekBoundary state = iota
	afterBoundary
	inHeaders
	inBody
	done
)

// partHeader holds what the parser keeps from one part's headers.
type partHeader struct {
	name        string
	filename    string
	hasFilename bool
	contentType string
}

type parser struct {
	body  []byte
	delim []byte
	pos   int
	part  partHeader
	form  *Form
}

func (p *parser) run() error {
	st := seekBoundary
	for st != done {
		var err error
		switch st {
		case seekBoundary:
			st, err = p.seekBoundary()
		case afterBoundary:
			st, err = p.afterBoundary()
		case inHeaders:
			st, err = p.readHeaders()
		case inBody:
			st, err = p.readBody()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seekBoundary skips the preamble up to the first delimiter.
func (p *parser) seekBoundary() (state, error) {
	i := bytes.Index(p.body[p.pos:], p.delim)
	if i < 0 {
		return done, fmt.Errorf("%w: boundary not found", ErrMalformed)
	}
	p.pos += i + len(p.delim)
	return afterBoundary, nil
}

// afterBoundary decides between the closing delimiter and the next part.
func (p *parser) afterBoundary() (state, error) {
	rest := p.body[p.pos:]
	if len(rest) == 0 || bytes.HasPrefix(rest, []byte("--")) {
		return done, nil
	}
	// Transport padding may follow the delimiter.
	n := 0
	for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t') {
		n++
	}
	rest = rest[n:]
	switch {
	case bytes.HasPrefix(rest, []byte("\r\n")):
		n += 2
	case bytes.HasPrefix(rest, []byte("\n")):
		n++
	default:
		return done, fmt.Errorf("%w: no line break after boundary", ErrMalformed)
	}
	p.pos += n
	p.part = partHeader{}
	return inHeaders, nil
}

// readHeaders consumes header lines up to and including the blank line.
func (p *parser) readHeaders() (state, error) {
	for {
		nl := bytes.IndexByte(p.body[p.pos:], '\n')
		if nl < 0 {
			return done, fmt.Errorf("%w: unterminated part headers", ErrMalformed)
		}
		line := bytes.TrimSuffix(p.body[p.pos:p.pos+nl], []byte("\r"))
		p.pos += nl + 1
		if len(line) == 0 {
			return inBody, nil
		}

		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			return done, fmt.Errorf("%w: bad header line", ErrMalformed)
		}
		v := strings.TrimSpace(string(value))
		switch strings.ToLower(strings.TrimSpace(string(name))) {
		case "content-disposition":
			params := dispositionParams(v)
			p.part.name = params["name"]
			p.part.filename, p.part.hasFilename = params["filename"]
		case "content-type":
			p.part.contentType = v
		}
	}
}

// readBody takes everything up to the next delimiter, less one line break.
func (p *parser) readBody() (state, error) {
	i := bytes.Index(p.body[p.pos:], p.delim)
	if i < 0 {
		return done, fmt.Errorf("%w: part is not terminated by a boundary", ErrMalformed)
	}
	data := p.body[p.pos : p.pos+i]
	switch {
	case bytes.HasSuffix(data, []byte("\r\n")):
		data = data[:len(data)-2]
	case bytes.HasSuffix(data, []byte("\n")):
		data = data[:len(data)-1]
	}
	p.pos += i + len(p.delim)
	p.keep(data)
	return afterBoundary, nil
}

// keep stores a finished part. Only the first file part is captured.
func (p *parser) keep(data []byte) {
	if p.part.hasFilename {
		base := baseName(p.part.filename)
		if base != "" && p.form.FileName == "" {
			p.form.FileName = base
			p.form.ContentType = p.part.contentType
			p.form.Data = data
		}
		return
	}
	if p.part.name == "" {
		return
	}
	if _, seen := p.form.Fields[p.part.name]; !seen {
		p.form.Fields[p.part.name] = string(data)
	}
}

// baseName drops any client directory components, either separator style.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

// dispositionParams splits `form-data; name="a"; filename="b"` into its
// parameters. Quoted values may contain ';'. Backslashes are kept literally
// since browsers send Windows paths unescaped.
func dispositionParams(v string) map[string]string {
	params := make(map[string]string)
	i := strings.IndexByte(v, ';')
	if i < 0 {
		return params
	}
	rest := v[i+1:]
	for len(rest) > 0 {
		rest = strings.TrimLeft(rest, " \t;")
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(rest[:eq]))
		rest = strings.TrimLeft(rest[eq+1:], " \t")

		var val string
		if strings.HasPrefix(rest, `"`) {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				val, rest = rest[1:], ""
			} else {
				val, rest = rest[1:end+1], rest[end+2:]
			}
		} else {
			end := strings.IndexByte(rest, ';')
			if end < 0 {
				end = len(rest)
			}
			val, rest = strings.TrimSpace(rest[:end]), rest[end:]
		}
		if _, dup := params[key]; !dup {
			params[key] = val
		}
	}
	return params
}
