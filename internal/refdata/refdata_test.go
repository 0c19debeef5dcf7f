package refdata

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nadira/healthdash/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "population.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const header = "sex,age,height,weight,SBP,DBP,BLDS,gamma_GTP,smoking,drinking\n"

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), testLogger())
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	path := writeDataset(t, "sex,age,height\nMale,30,170\n")
	_, err := Load(path, testLogger())
	if err == nil {
		t.Fatal("Load() should reject a dataset without the summary columns")
	}
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	path := writeDataset(t, header+
		"Male,30,170,70,120,80,90,30,1,N\n"+
		"Female,40,oops,60,110,70,85,25,1,N\n"+ // bad height, skipped
		"Male,50,180,90,130,85,110,50,3,Y\n")

	d, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (malformed row skipped)", d.Len())
	}
}

func TestSummary(t *testing.T) {
	// Two rows: BMI 100/(2*2)=25 and 81/(1.8*1.8)=25. One current smoker
	// (ordinal 3), one drinker.
	path := writeDataset(t, header+
		"Male,30,200,100,120,80,90,30,3,Y\n"+
		"Female,40,180,81,110,70,110,50,1,N\n")

	d, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := d.Summary()
	if s.Scope != model.ScopeGlobal {
		t.Errorf("Scope = %q, want %q", s.Scope, model.ScopeGlobal)
	}
	if s.Count != 2 {
		t.Errorf("Count = %d, want 2", s.Count)
	}
	if math.Abs(s.MeanBMI-25) > 1e-9 {
		t.Errorf("MeanBMI = %v, want 25", s.MeanBMI)
	}
	if s.MeanSBP != 115 {
		t.Errorf("MeanSBP = %v, want 115", s.MeanSBP)
	}
	if s.MeanDBP != 75 {
		t.Errorf("MeanDBP = %v, want 75", s.MeanDBP)
	}
	if s.MeanBLDS != 100 {
		t.Errorf("MeanBLDS = %v, want 100", s.MeanBLDS)
	}
	if s.MeanGammaGTP != 40 {
		t.Errorf("MeanGammaGTP = %v, want 40", s.MeanGammaGTP)
	}
	if s.SmokerPercent != 50 {
		t.Errorf("SmokerPercent = %v, want 50", s.SmokerPercent)
	}
	if s.DrinkerPercent != 50 {
		t.Errorf("DrinkerPercent = %v, want 50", s.DrinkerPercent)
	}
}

func TestSummary_FormerSmokerNotCounted(t *testing.T) {
	path := writeDataset(t, header+
		"Male,30,170,70,120,80,90,30,2,0\n")

	d, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s := d.Summary(); s.SmokerPercent != 0 {
		t.Errorf("SmokerPercent = %v, want 0 for a former smoker", s.SmokerPercent)
	}
}
