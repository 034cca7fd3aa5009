package palette

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/errors"
)

func TestDefaultAssignment(t *testing.T) {
	tests := []struct {
		name         string
		regionType   string
		wantColor    string
		wantCategory annot.RegionType
	}{
		{name: "CDR", regionType: "CDR", wantColor: "#ef5350", wantCategory: annot.RegionCDR},
		{name: "NumberedCDR", regionType: "CDR2", wantColor: "#ef5350", wantCategory: annot.RegionCDR},
		{name: "NumberedFR", regionType: "FR4", wantColor: "#64b5f6", wantCategory: annot.RegionFR},
		{name: "Linker", regionType: "LINKER", wantColor: "#ffb74d", wantCategory: annot.RegionLinker},
		{name: "Mutation", regionType: "MUTATION", wantColor: "#ba68c8", wantCategory: annot.RegionMutation},
		{name: "Liability", regionType: "LIABILITY", wantColor: "#ff8a65", wantCategory: annot.RegionLiability},
		{name: "LowercaseInput", regionType: "cdr1", wantColor: "#ef5350", wantCategory: annot.RegionCDR},
		{name: "UnknownFallsBack", regionType: "SOMETHING_ELSE", wantColor: "#b0bec5", wantCategory: annot.RegionConstant},
		{name: "Empty", regionType: "", wantColor: "#b0bec5", wantCategory: annot.RegionConstant},
	}

	scheme := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scheme.Assignment(tt.regionType)
			if a.Color != tt.wantColor {
				t.Errorf("color = %q, want %q", a.Color, tt.wantColor)
			}
			if a.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", a.Category, tt.wantCategory)
			}
		})
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		wantErr bool
		errCode errors.Code
		check   func(t *testing.T, s *Scheme)
	}{
		{
			name: "Override",
			toml: "[colors]\nCDR = \"#e91e63\"\n",
			check: func(t *testing.T, s *Scheme) {
				if color, _ := s.ColorFor("CDR1"); color != "#e91e63" {
					t.Errorf("CDR color = %q, want override", color)
				}
				// Untouched categories keep defaults.
				if color, _ := s.ColorFor("FR1"); color != "#64b5f6" {
					t.Errorf("FR color = %q, want default", color)
				}
			},
		},
		{
			name:    "UnknownCategory",
			toml:    "[colors]\nBOGUS = \"#112233\"\n",
			wantErr: true,
			errCode: errors.ErrCodeInvalidScheme,
		},
		{
			name:    "InvalidHex",
			toml:    "[colors]\nCDR = \"red\"\n",
			wantErr: true,
			errCode: errors.ErrCodeInvalidScheme,
		},
		{
			name:    "NotTOML",
			toml:    "{json: true}",
			wantErr: true,
			errCode: errors.ErrCodeInvalidScheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScheme(tt.toml)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, tt.errCode) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.errCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScheme: %v", err)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestLoadScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.toml")
	if err := os.WriteFile(path, []byte("[colors]\nLINKER = \"#000000\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScheme(path)
	if err != nil {
		t.Fatalf("LoadScheme: %v", err)
	}
	if color, _ := s.ColorFor("LINKER"); color != "#000000" {
		t.Errorf("linker color = %q", color)
	}

	if _, err := LoadScheme(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadScheme accepted missing file")
	}
}
