package drawer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"drawer-go/internal/model"
)

// Content is an open, resolved read of a file's bytes.
// Start and End are inclusive offsets. The caller must close Body.
type Content struct {
	File    model.FileRecord
	Size    int64
	Start   int64
	End     int64
	Partial bool
	Body    io.ReadCloser
}

// Length is the number of bytes Body yields.
func (c *Content) Length() int64 {
	return c.End - c.Start + 1
}

// ContentRange formats the Content-Range header value for a partial response.
func (c *Content) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", c.Start, c.End, c.Size)
}

// RangeError carries the blob size for an unsatisfiable range, so callers can
// answer with "Content-Range: bytes */size".
type RangeError struct {
	Size int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range not satisfiable for %d bytes", e.Size)
}

// ParseRange resolves a Range header against a blob of size bytes.
// It understands "bytes=S-E", "bytes=S-" and the suffix form "bytes=-N".
// E is clamped to the last byte. An absent, multi-range, malformed,
// backwards or non-byte range selects the whole blob with partial=false.
func ParseRange(header string, size int64) (start, end int64, partial bool, err error) {
	full := func() (int64, int64, bool, error) { return 0, size - 1, false, nil }
	unsatisfiable := func() (int64, int64, bool, error) {
		return 0, 0, false, &Error{
			Kind:    KindRangeNotSatisfiable,
			Op:      "ParseRange",
			Message: fmt.Sprintf("range %q is outside the file", header),
			Err:     &RangeError{Size: size},
		}
	}

	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return full()
	}
	first, last, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return full()
	}

	if first == "" {
		n, perr := strconv.ParseInt(last, 10, 64)
		if perr != nil {
			return full()
		}
		if n <= 0 || size == 0 {
			return unsatisfiable()
		}
		return max(size-n, 0), size - 1, true, nil
	}

	start, perr := strconv.ParseInt(first, 10, 64)
	if perr != nil || start < 0 {
		return full()
	}
	end = size - 1
	if last != "" {
		if end, perr = strconv.ParseInt(last, 10, 64); perr != nil || end < start {
			return full()
		}
		end = min(end, size-1)
	}
	if start >= size {
		return unsatisfiable()
	}
	return start, end, true, nil
}

// OpenContent resolves a file record and range and opens its bytes.
// A missing record and missing bytes both report KindNotFound; the catalog
// is not changed here (see Verify).
func (s *Service) OpenContent(id, rangeHeader string) (*Content, error) {
	const op = "OpenContent"

	rec, ok := s.catalog.GetFile(id)
	if !ok {
		return nil, Errorf(KindNotFound, op, "file %s not found", id)
	}
	loc := s.vault.Location(rec.FolderPath, rec.StorageName)
	size, err := s.vault.Stat(loc)
	if err != nil {
		if IsKind(err, KindNotFound) {
			s.logger.Warn("file bytes missing", "id", rec.ID, "path", rec.FullPath)
			return nil, Errorf(KindNotFound, op, "file %s not found", id)
		}
		return nil, err
	}

	start, end, partial, err := ParseRange(rangeHeader, size)
	if err != nil {
		return nil, err
	}
	body, err := s.vault.Open(loc, start, end-start+1)
	if err != nil {
		return nil, err
	}
	return &Content{
		File:    rec,
		Size:    size,
		Start:   start,
		End:     end,
		Partial: partial,
		Body:    body,
	}, nil
}
