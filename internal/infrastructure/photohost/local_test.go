package photohost

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLocal_UploadAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocal(dir, "http://localhost:8080/uploads/", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	url, err := host.UploadImage(context.Background(), "students/2023_001", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://localhost:8080/uploads/students/2023_001" {
		t.Fatalf("unexpected url %q", url)
	}

	url2, err := host.UploadImage(context.Background(), "students/2023_001", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if url2 != url {
		t.Fatalf("expected identical url for identical key, got %q and %q", url, url2)
	}

	p, _ := host.Path("students/2023_001")
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "second" {
		t.Fatalf("expected overwritten content, got %q", b)
	}

	entries, _ := os.ReadDir(dir + "/students")
	if len(entries) != 1 {
		t.Fatalf("expected a single stored file, got %d", len(entries))
	}
}

func TestLocal_PathRejectsTraversal(t *testing.T) {
	host, err := NewLocal(t.TempDir(), "http://x", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	for _, key := range []string{"", "/", "../etc/passwd", "students/../../x", "/abs", "students//x"} {
		if _, err := host.Path(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Path(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
	if _, err := host.Path("students/ok"); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}
}

func TestLocal_URLEscapesKey(t *testing.T) {
	host, err := NewLocal(t.TempDir(), "http://localhost:8080/uploads", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	cases := map[string]string{
		"students/2023_001": "http://localhost:8080/uploads/students/2023_001",
		"students/2023#1":   "http://localhost:8080/uploads/students/2023%231",
		"students/2023?x=1": "http://localhost:8080/uploads/students/2023%3Fx=1",
		"students/a b":      "http://localhost:8080/uploads/students/a%20b",
	}
	for key, want := range cases {
		got, err := host.UploadImage(context.Background(), key, strings.NewReader("img"))
		if err != nil {
			t.Fatalf("upload %q: %v", key, err)
		}
		if got != want {
			t.Errorf("UploadImage(%q) url = %q, want %q", key, got, want)
		}

		u, err := url.Parse(got)
		if err != nil {
			t.Fatalf("parse %q: %v", got, err)
		}
		if u.Path != "/uploads/"+key {
			t.Errorf("url %q decodes to path %q, want %q", got, u.Path, "/uploads/"+key)
		}
	}
}
