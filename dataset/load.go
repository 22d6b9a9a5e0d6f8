package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spektr-org/launchdash/store"
)

const mimeSQLite = "application/vnd.sqlite3"

// Load reads the dataset at path. SQLite files written by Import are read
// through the store; anything textual is parsed as CSV using cols.
func Load(ctx context.Context, path string, cols Columns) (*Dataset, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting dataset format: %w", err)
	}
	slog.Debug("dataset format detected", "path", path, "mime", mtype.String())

	var records []LaunchRecord
	switch {
	case mtype.Is(mimeSQLite):
		records, err = loadSQLite(ctx, path)
	case isText(mtype):
		records, err = loadCSV(path, cols)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, mtype.String())
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	ds, err := New(records, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Info("dataset loaded", "path", path, "records", ds.Len(), "sites", len(ds.sites))
	return ds, nil
}

// Import copies the CSV dataset at src into the SQLite file at dst, replacing
// any launches already stored there. It returns the recorded import.
func Import(ctx context.Context, src, dst string, cols Columns) (*store.Import, error) {
	records, err := loadCSV(src, cols)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}

	repo, err := store.Open(dst)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	launches := make([]store.Launch, len(records))
	for i, r := range records {
		launches[i] = store.Launch{
			Site:            r.Site,
			PayloadMassKg:   r.PayloadMassKg,
			Class:           r.Class,
			BoosterCategory: r.BoosterCategory,
		}
	}

	if _, err := repo.ReplaceLaunches(ctx, src, launches); err != nil {
		return nil, err
	}

	imp, err := repo.LastImport(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if imp == nil || stored != imp.RowCount {
		return nil, fmt.Errorf("import into %s: stored %d launches, expected %d", dst, stored, len(launches))
	}
	slog.Info("dataset imported", "src", src, "dst", dst, "rows", stored, "import_id", imp.ID)
	return imp, nil
}

func loadCSV(path string, cols Columns) ([]LaunchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	return ParseCSV(f, cols)
}

func loadSQLite(ctx context.Context, path string) ([]LaunchRecord, error) {
	repo, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	imp, err := repo.LastImport(ctx)
	if err != nil {
		return nil, err
	}
	if imp != nil {
		slog.Debug("sqlite dataset", "path", path, "import_id", imp.ID,
			"source", imp.Source, "imported_at", imp.ImportedAt)
	}

	launches, err := repo.Launches(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]LaunchRecord, len(launches))
	for i, l := range launches {
		records[i] = LaunchRecord{
			Site:            l.Site,
			PayloadMassKg:   l.PayloadMassKg,
			Class:           l.Class,
			BoosterCategory: l.BoosterCategory,
		}
	}
	return records, nil
}

// isText reports whether m is text/plain or one of its descendants (text/csv,
// text/tab-separated-values).
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
