package yamlutil_test

// Notes:
// - TestInputSizeLimit modifies the package-level MaxInputSize and cannot
//   run in parallel with the other tests.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docgen/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Parses YAML and rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		dest       any
		wantErr    error
		wantAnyErr bool
		want       testConfig
	}{
		{
			name: "valid YAML",
			data: []byte("name: test\ncount: 42\nenabled: true"),
			dest: &testConfig{},
			want: testConfig{Name: "test", Count: 42, Enabled: true},
		},
		{
			name: "unicode content",
			data: []byte("name: 日本語テスト"),
			dest: &testConfig{},
			want: testConfig{Name: "日本語テスト"},
		},
		{
			name:       "unknown field",
			data:       []byte("name: test\ncolour: blue"),
			dest:       &testConfig{},
			wantAnyErr: true,
		},
		{
			name:       "invalid YAML syntax",
			data:       []byte("name: [unclosed"),
			dest:       &testConfig{},
			wantAnyErr: true,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantAnyErr {
				if err == nil || !strings.HasPrefix(err.Error(), "yamlutil:") {
					t.Fatalf("expected wrapped yamlutil error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := *tt.dest.(*testConfig); got != tt.want {
				t.Errorf("decoded %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - Reads and decodes a file
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("name: file\ncount: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := yamlutil.ReadFileStrict(path, &cfg); err != nil {
		t.Fatalf("ReadFileStrict() error = %v", err)
	}
	if cfg.Name != "file" || cfg.Count != 3 {
		t.Errorf("decoded %+v", cfg)
	}

	err := yamlutil.ReadFileStrict(filepath.Join(dir, "missing.yaml"), &cfg)
	if !os.IsNotExist(err) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Encodes Go values
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	data, err := yamlutil.Marshal(testConfig{Name: "out", Count: 7})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back testConfig
	if err := yamlutil.UnmarshalStrict(data, &back); err != nil {
		t.Fatalf("decoding marshaled output: %v", err)
	}
	if back.Name != "out" || back.Count != 7 {
		t.Errorf("decoded %+v from %q", back, data)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Oversized input is rejected
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	orig := yamlutil.MaxInputSize
	defer func() { yamlutil.MaxInputSize = orig }()
	yamlutil.MaxInputSize = 16

	err := yamlutil.UnmarshalStrict([]byte("name: "+strings.Repeat("x", 32)), &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("error = %v, want ErrInputTooLarge", err)
	}

	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, []byte("name: "+strings.Repeat("x", 64)), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := yamlutil.ReadFileStrict(path, &testConfig{}); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("ReadFileStrict() error = %v, want ErrInputTooLarge", err)
	}
}
