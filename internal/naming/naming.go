package naming

import (
	"fmt"
	"regexp"
	"strings"

	"drawer-go/internal/drawer"
)

// DefaultFolderPattern allows alphanumerics, space, hyphen and underscore.
const DefaultFolderPattern = `^[a-zA-Z0-9 _-]+$`

// maxNameLength is the longest display name accepted, in bytes.
const maxNameLength = 255

// Policy validates folder and file names at the boundary of the catalog.
type Policy struct {
	folderPattern *regexp.Regexp
	deny          *DenyMatcher
}

// NewPolicy compiles a folder-name pattern and a deny list of file-name globs.
// An empty pattern selects DefaultFolderPattern.
func NewPolicy(folderPattern string, deny []string) (*Policy, error) {
	if folderPattern == "" {
		folderPattern = DefaultFolderPattern
	}
	re, err := regexp.Compile(folderPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling folder name pattern: %w", err)
	}
	return &Policy{folderPattern: re, deny: NewDenyMatcher(deny)}, nil
}

// DefaultPolicy returns the policy with the default pattern and no deny list.
func DefaultPolicy() *Policy {
	return &Policy{
		folderPattern: regexp.MustCompile(DefaultFolderPattern),
		deny:          NewDenyMatcher(nil),
	}
}

// ValidateFolderName checks a single folder name against the configured pattern.
func (p *Policy) ValidateFolderName(name string) error {
	if name == "" {
		return drawer.Errorf(drawer.KindInvalidName, "", "folder name is required")
	}
	if len(name) > maxNameLength {
		return drawer.Errorf(drawer.KindInvalidName, "", "folder name is too long")
	}
	if !p.folderPattern.MatchString(name) {
		return drawer.Errorf(drawer.KindInvalidName, "", "folder name %q contains invalid characters", name)
	}
	return nil
}

// ValidateFolderPath checks every segment of a normalized folder path.
// Root is always valid.
func (p *Policy) ValidateFolderPath(path string) error {
	if path == drawer.RootPath {
		return nil
	}
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if err := p.ValidateFolderName(seg); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFileName checks a file display name. File names may contain dots,
// so they are not held to the folder pattern, only to path safety.
func (p *Policy) ValidateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return drawer.Errorf(drawer.KindInvalidName, "", "file name is required")
	case len(name) > maxNameLength:
		return drawer.Errorf(drawer.KindInvalidName, "", "file name is too long")
	case name == "." || name == "..":
		return drawer.Errorf(drawer.KindInvalidName, "", "file name %q is reserved", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return drawer.Errorf(drawer.KindInvalidName, "", "file name %q contains invalid characters", name)
	}
	return nil
}

// Denied reports whether uploads with this file name are refused.
func (p *Policy) Denied(name string) bool {
	return p.deny.Match(name)
}

var _ drawer.NamePolicy = (*Policy)(nil)
