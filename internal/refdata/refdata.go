// Package refdata loads the optional population reference dataset used for
// the global dashboard summary. The dataset is a CSV export of national
// health-screening records; it is read once at startup and never written.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/risk"
)

// row is the subset of dataset columns the summary needs.
type row struct {
	heightCm float64
	weightKg float64
	sbp      float64
	dbp      float64
	blds     float64
	gammaGTP float64
	smoker   bool
	drinker  bool
}

// Dataset is an immutable, in-memory population sample.
type Dataset struct {
	rows []row
}

// Load reads the population CSV at path. A missing file is reported as an
// error; callers treat that as "global summary unavailable" rather than
// fatal. Rows with malformed numeric fields are skipped and counted in a
// single log line.
func Load(path string, logger *slog.Logger) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"height", "weight", "SBP", "DBP", "BLDS", "gamma_GTP", "smoking", "drinking"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var (
		rows    []row
		skipped int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %w", err)
		}

		parsed, err := parseRow(rec, cols)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, parsed)
	}

	if skipped > 0 {
		logger.Warn("skipped malformed reference rows", "path", path, "skipped", skipped)
	}
	logger.Info("reference dataset loaded", "path", path, "rows", len(rows))

	return &Dataset{rows: rows}, nil
}

func parseRow(rec []string, cols map[string]int) (row, error) {
	num := func(name string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(rec[cols[name]]), 64)
	}

	var (
		out row
		err error
	)
	if out.heightCm, err = num("height"); err != nil {
		return row{}, err
	}
	if out.weightKg, err = num("weight"); err != nil {
		return row{}, err
	}
	if out.sbp, err = num("SBP"); err != nil {
		return row{}, err
	}
	if out.dbp, err = num("DBP"); err != nil {
		return row{}, err
	}
	if out.blds, err = num("BLDS"); err != nil {
		return row{}, err
	}
	if out.gammaGTP, err = num("gamma_GTP"); err != nil {
		return row{}, err
	}

	out.smoker, err = parseSmoking(rec[cols["smoking"]])
	if err != nil {
		return row{}, err
	}
	out.drinker, err = parseDrinking(rec[cols["drinking"]])
	if err != nil {
		return row{}, err
	}
	return out, nil
}

// parseSmoking handles the screening ordinal (1 never, 2 former, 3 current);
// only current smokers count as smokers.
func parseSmoking(s string) (bool, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false, err
	}
	return v == 3, nil
}

// parseDrinking handles both encodings seen in dataset exports: Y/N letters
// and a 0/1 flag.
func parseDrinking(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "Y", "y":
		return true, nil
	case "N", "n":
		return false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Len reports the number of usable rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Summary aggregates the population into the dashboard gauge metrics.
func (d *Dataset) Summary() model.Summary {
	s := model.Summary{Scope: model.ScopeGlobal, Count: len(d.rows)}
	if len(d.rows) == 0 {
		return s
	}

	var smokers, drinkers int
	for _, r := range d.rows {
		s.MeanBLDS += r.blds
		s.MeanBMI += risk.BMI(r.weightKg, r.heightCm)
		s.MeanSBP += r.sbp
		s.MeanDBP += r.dbp
		s.MeanGammaGTP += r.gammaGTP
		if r.smoker {
			smokers++
		}
		if r.drinker {
			drinkers++
		}
	}

	n := float64(len(d.rows))
	s.MeanBLDS /= n
	s.MeanBMI /= n
	s.MeanSBP /= n
	s.MeanDBP /= n
	s.MeanGammaGTP /= n
	s.SmokerPercent = float64(smokers) / n * 100
	s.DrinkerPercent = float64(drinkers) / n * 100
	return s
}
