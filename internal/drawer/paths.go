package drawer

import "strings"

// RootPath is the canonical path of the implicit root folder.
const RootPath = "/"

// NormalizePath collapses repeated separators, strips a trailing separator and
// ensures a leading one. The empty string normalizes to root.
// Segments are not validated here; see the naming package.
func NormalizePath(p string) string {
	var b strings.Builder
	b.Grow(len(p) + 1)
	b.WriteByte('/')
	lastSlash := true
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if lastSlash {
				continue
			}
			lastSlash = true
		} else {
			lastSlash = false
		}
		b.WriteByte(c)
	}
	out := b.String()
	if len(out) > 1 && out[len(out)-1] == '/' {
		out = out[:len(out)-1]
	}
	return out
}

// JoinPath appends name to parent, special-casing root.
func JoinPath(parent, name string) string {
	if parent == RootPath || parent == "" {
		return RootPath + name
	}
	return parent + "/" + name
}

// ParentPath returns the containing folder of p. The parent of root is root.
func ParentPath(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i <= 0 {
		return RootPath
	}
	return p[:i]
}

// BaseName returns the final segment of p, or "" for root.
func BaseName(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// IsDescendant reports whether p lies strictly below ancestor.
func IsDescendant(p, ancestor string) bool {
	if ancestor == RootPath {
		return p != RootPath && strings.HasPrefix(p, RootPath)
	}
	return strings.HasPrefix(p, ancestor+"/")
}

// IsSameOrDescendant reports whether p equals ancestor or lies below it.
func IsSameOrDescendant(p, ancestor string) bool {
	return p == ancestor || IsDescendant(p, ancestor)
}

// RewritePrefix replaces a leading oldPrefix of p with newPrefix.
// Paths that do not start with oldPrefix are returned unchanged.
func RewritePrefix(p, oldPrefix, newPrefix string) string {
	switch {
	case p == oldPrefix:
		return newPrefix
	case IsDescendant(p, oldPrefix):
		rest := p[len(oldPrefix):]
		if oldPrefix == RootPath {
			rest = p[1:]
			return JoinPath(newPrefix, rest)
		}
		if newPrefix == RootPath {
			return rest
		}
		return newPrefix + rest
	default:
		return p
	}
}
