package drawer

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"//", "/"},
		{"docs", "/docs"},
		{"/docs/", "/docs"},
		{"//docs///2024//", "/docs/2024"},
		{"/My Docs/Q1", "/My Docs/Q1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinParentBase(t *testing.T) {
	tests := []struct {
		parent, name, full string
	}{
		{"/", "docs", "/docs"},
		{"/docs", "2024", "/docs/2024"},
		{"/docs/2024", "report.pdf", "/docs/2024/report.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.full, func(t *testing.T) {
			if got := JoinPath(tt.parent, tt.name); got != tt.full {
				t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.parent, tt.name, got, tt.full)
			}
			if got := ParentPath(tt.full); got != tt.parent {
				t.Errorf("ParentPath(%q) = %q, want %q", tt.full, got, tt.parent)
			}
			if got := BaseName(tt.full); got != tt.name {
				t.Errorf("BaseName(%q) = %q, want %q", tt.full, got, tt.name)
			}
		})
	}

	if got := ParentPath("/"); got != "/" {
		t.Errorf("ParentPath(/) = %q, want /", got)
	}
	if got := BaseName("/"); got != "" {
		t.Errorf("BaseName(/) = %q, want empty", got)
	}
}

func TestIsDescendant(t *testing.T) {
	tests := []struct {
		p, ancestor  string
		want, orSame bool
	}{
		{"/docs/2024", "/docs", true, true},
		{"/docs", "/docs", false, true},
		{"/docsarchive", "/docs", false, false},
		{"/docs", "/", true, true},
		{"/", "/", false, true},
		{"/other", "/docs", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.p+" under "+tt.ancestor, func(t *testing.T) {
			if got := IsDescendant(tt.p, tt.ancestor); got != tt.want {
				t.Errorf("IsDescendant() = %v, want %v", got, tt.want)
			}
			if got := IsSameOrDescendant(tt.p, tt.ancestor); got != tt.orSame {
				t.Errorf("IsSameOrDescendant() = %v, want %v", got, tt.orSame)
			}
		})
	}
}

func TestRewritePrefix(t *testing.T) {
	tests := []struct {
		p, oldPrefix, newPrefix, want string
	}{
		{"/docs", "/docs", "/archive", "/archive"},
		{"/docs/2024/a.pdf", "/docs", "/archive", "/archive/2024/a.pdf"},
		{"/docsarchive/x", "/docs", "/archive", "/docsarchive/x"},
		{"/docs/2024", "/docs", "/", "/2024"},
		{"/docs/2024", "/", "/moved", "/moved/docs/2024"},
		{"/a/b", "/a", "/x/y/z", "/x/y/z/b"},
	}
	for _, tt := range tests {
		t.Run(tt.p, func(t *testing.T) {
			if got := RewritePrefix(tt.p, tt.oldPrefix, tt.newPrefix); got != tt.want {
				t.Errorf("RewritePrefix(%q, %q, %q) = %q, want %q", tt.p, tt.oldPrefix, tt.newPrefix, got, tt.want)
			}
		})
	}
}
