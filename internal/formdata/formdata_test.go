package formdata

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"
)

const testBoundary = "XyZ123boundary"

var testContentType = "multipart/form-data; boundary=" + testBoundary

// writeForm encodes fields and one file with the standard library writer.
func writeForm(t *testing.T, fields map[string]string, filename, fileType string, data []byte) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if fileType != "" {
		h.Set("Content-Type", fileType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return w.FormDataContentType(), buf.Bytes()
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
		wantErr     error
	}{
		{"plain", "multipart/form-data; boundary=abc", "abc", nil},
		{"quoted", `multipart/form-data; boundary="a b:c"`, "a b:c", nil},
		{"mixed case type", "Multipart/Form-Data; boundary=abc", "abc", nil},
		{"missing boundary", "multipart/form-data", "", ErrNoBoundary},
		{"json", "application/json", "", ErrNotMultipart},
		{"empty", "", "", ErrNotMultipart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Boundary(tt.contentType)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Boundary() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Boundary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_StandardWriter(t *testing.T) {
	data := []byte("plain text\r\nwith --dashes-- and a final newline\n")
	ct, body := writeForm(t, map[string]string{"folderPath": "/docs", "note": "hi"}, "notes.txt", "text/plain", data)

	form, err := Parse(ct, body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(form.Data, data) {
		t.Errorf("Data = %q, want %q", form.Data, data)
	}
	if form.Fields["folderPath"] != "/docs" || form.Fields["note"] != "hi" {
		t.Errorf("Fields = %v", form.Fields)
	}
}

func TestParse_TrailingLineBreaks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "crlf",
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n" +
				"Content-Type: text/plain\r\n\r\n" +
				"hello\r\n" +
				"--" + testBoundary + "--\r\n",
			want: "hello",
		},
		{
			name: "missing trailing line break keeps last byte",
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n\r\n" +
				"hello" +
				"--" + testBoundary + "--",
			want: "hello",
		},
		{
			name: "only one line break removed",
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n\r\n" +
				"hello\r\n\r\n" +
				"--" + testBoundary + "--\r\n",
			want: "hello\r\n",
		},
		{
			name: "bare lf",
			body: "--" + testBoundary + "\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\n\n" +
				"hello\n" +
				"--" + testBoundary + "--\n",
			want: "hello",
		},
		{
			name: "zero byte file",
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"empty\"\r\n\r\n" +
				"\r\n" +
				"--" + testBoundary + "--\r\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := Parse(testContentType, []byte(tt.body))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if string(form.Data) != tt.want {
				t.Errorf("Data = %q, want %q", form.Data, tt.want)
			}
		})
	}
}

func TestParse_FieldsAndFileNames(t *testing.T) {
	body := "preamble is ignored\r\n" +
		"--" + testBoundary + "\r\n" +
		"Content-Disposition: form-data; name=\"folderPath\"\r\n\r\n" +
		"/docs\r\n" +
		"--" + testBoundary + "\r\n" +
		"content-disposition: form-data; name=\"file\"; filename=\"C:\\Users\\me\\semi;colon.txt\"\r\n" +
		"content-type: text/plain\r\n\r\n" +
		"first\r\n" +
		"--" + testBoundary + "\r\n" +
		"Content-Disposition: form-data; name=\"other\"; filename=\"second.txt\"\r\n\r\n" +
		"second\r\n" +
		"--" + testBoundary + "--\r\n" +
		"epilogue"

	form, err := Parse(testContentType, []byte(body))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if form.FileName != "semi;colon.txt" {
		t.Errorf("FileName = %q, want semi;colon.txt", form.FileName)
	}
	if form.ContentType != "text/plain" {
		t.Errorf("ContentType = %q, want text/plain", form.ContentType)
	}
	if string(form.Data) != "first" {
		t.Errorf("Data = %q, want first part", form.Data)
	}
	if form.Fields["folderPath"] != "/docs" {
		t.Errorf("folderPath = %q, want /docs", form.Fields["folderPath"])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        error
	}{
		{"not multipart", "text/plain", "x", ErrNotMultipart},
		{"no boundary", "multipart/form-data", "x", ErrNoBoundary},
		{"no delimiter", testContentType, "just some bytes", ErrMalformed},
		{
			name:        "only fields",
			contentType: testContentType,
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"folderPath\"\r\n\r\n/\r\n" +
				"--" + testBoundary + "--\r\n",
			want: ErrNoFile,
		},
		{
			name:        "empty filename",
			contentType: testContentType,
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"\"\r\n\r\n\r\n" +
				"--" + testBoundary + "--\r\n",
			want: ErrNoFile,
		},
		{
			name:        "unterminated headers",
			contentType: testContentType,
			body:        "--" + testBoundary + "\r\nContent-Disposition: form-data; name=\"file\"",
			want:        ErrMalformed,
		},
		{
			name:        "unterminated part",
			contentType: testContentType,
			body: "--" + testBoundary + "\r\n" +
				"Content-Disposition: form-data; name=\"file\"; filename=\"a\"\r\n\r\npayload",
			want: ErrMalformed,
		},
		{
			name:        "header without colon",
			contentType: testContentType,
			body:        "--" + testBoundary + "\r\nnonsense\r\n\r\nx\r\n--" + testBoundary + "--",
			want:        ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.contentType, []byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDispositionParams(t *testing.T) {
	tests := []struct {
		value string
		want  map[string]string
	}{
		{`form-data; name=upload; filename="x.txt"; NAME="ignored"`, map[string]string{"name": "upload", "filename": "x.txt"}},
		{`form-data; name="a"`, map[string]string{"name": "a"}},
		{`form-data`, map[string]string{}},
		{`form-data; filename="unterminated`, map[string]string{"filename": "unterminated"}},
	}
	for _, tt := range tests {
		got := dispositionParams(tt.value)
		if len(got) != len(tt.want) {
			t.Errorf("dispositionParams(%q) = %v, want %v", tt.value, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("dispositionParams(%q)[%q] = %q, want %q", tt.value, k, got[k], v)
			}
		}
	}
}
