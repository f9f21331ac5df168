package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl.zst")

	w, err := NewJSONLZstdWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	type line struct {
		Tick  uint64  `json:"tick"`
		Price float64 `json:"price"`
	}
	for i := 0; i < 5; i++ {
		if err := w.Write(line{Tick: uint64(i), Price: float64(i) * 1.5}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []line
	sc := bufio.NewScanner(dec.IOReadCloser())
	for sc.Scan() {
		var l line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		got = append(got, l)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("read %d lines, want 5", len(got))
	}
	if got[3].Tick != 3 || got[3].Price != 4.5 {
		t.Fatalf("line 3 = %+v", got[3])
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jsonl.zst")
	w, err := NewJSONLZstdWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
