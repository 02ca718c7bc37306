package drawer_test

import (
	"bytes"
	"errors"
	"testing"

	"drawer-go/internal/drawer"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		header      string
		size        int64
		start, end  int64
		partial     bool
		unsatisfied bool
	}{
		{"", 1000, 0, 999, false, false},
		{"bytes=100-199", 1000, 100, 199, true, false},
		{"bytes=900-", 1000, 900, 999, true, false},
		{"bytes=990-5000", 1000, 990, 999, true, false},
		{"bytes=-10", 1000, 990, 999, true, false},
		{"bytes=-5000", 1000, 0, 999, true, false},
		{"bytes=0-0", 1000, 0, 0, true, false},
		{"bytes=1000-", 1000, 0, 0, false, true},
		{"bytes=5-3", 1000, 0, 999, false, false},
		{"bytes=2000-1500", 1000, 0, 999, false, false},
		{"bytes=1500-2000", 1000, 0, 0, false, true},
		{"bytes=-0", 1000, 0, 0, false, true},
		{"bytes=0-", 0, 0, 0, false, true},
		{"bytes=0-1,5-6", 1000, 0, 999, false, false},
		{"items=0-1", 1000, 0, 999, false, false},
		{"bytes=abc-", 1000, 0, 999, false, false},
		{"bytes=5", 1000, 0, 999, false, false},
		{"", 0, 0, -1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			start, end, partial, err := drawer.ParseRange(tt.header, tt.size)
			if tt.unsatisfied {
				if !drawer.IsKind(err, drawer.KindRangeNotSatisfiable) {
					t.Fatalf("ParseRange() error = %v, want range_not_satisfiable", err)
				}
				var re *drawer.RangeError
				if !errors.As(err, &re) || re.Size != tt.size {
					t.Errorf("ParseRange() error %v does not carry size %d", err, tt.size)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange() error = %v", err)
			}
			if start != tt.start || end != tt.end || partial != tt.partial {
				t.Errorf("ParseRange() = %d, %d, %v, want %d, %d, %v", start, end, partial, tt.start, tt.end, tt.partial)
			}
		})
	}
}

func TestService_OpenContentRanges(t *testing.T) {
	f := newFixture(t)
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	rec := f.upload(t, "/", "thousand.bin", data)

	t.Run("partial", func(t *testing.T) {
		c, got := f.read(t, rec.ID, "bytes=100-199")
		if !c.Partial {
			t.Error("Partial = false, want true")
		}
		if len(got) != 100 || c.Length() != 100 {
			t.Errorf("served %d bytes (Length %d), want 100", len(got), c.Length())
		}
		if !bytes.Equal(got, data[100:200]) {
			t.Error("served bytes differ from the requested slice")
		}
		if cr := c.ContentRange(); cr != "bytes 100-199/1000" {
			t.Errorf("ContentRange() = %q, want %q", cr, "bytes 100-199/1000")
		}
	})

	t.Run("open ended", func(t *testing.T) {
		c, got := f.read(t, rec.ID, "bytes=900-")
		if c.End != 999 || !bytes.Equal(got, data[900:]) {
			t.Errorf("served %d bytes ending at %d, want the last 100", len(got), c.End)
		}
	})

	t.Run("unsatisfiable", func(t *testing.T) {
		_, err := f.svc.OpenContent(rec.ID, "bytes=1000-")
		if !drawer.IsKind(err, drawer.KindRangeNotSatisfiable) {
			t.Errorf("OpenContent() error = %v, want range_not_satisfiable", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.svc.OpenContent("missing", "")
		if !drawer.IsKind(err, drawer.KindNotFound) {
			t.Errorf("OpenContent() error = %v, want not_found", err)
		}
	})

	t.Run("missing bytes are logged", func(t *testing.T) {
		other := f.upload(t, "/", "gone.bin", []byte("gone"))
		if err := f.vault.Remove(f.vault.Location(other.FolderPath, other.StorageName)); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, err := f.svc.OpenContent(other.ID, ""); !drawer.IsKind(err, drawer.KindNotFound) {
			t.Errorf("OpenContent() error = %v, want not_found", err)
		}
		if len(f.logger.Entries("WARN")) == 0 {
			t.Error("missing bytes were not logged")
		}
	})
}
