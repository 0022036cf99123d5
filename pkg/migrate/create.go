package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// CreateSQLMigration writes an empty goose migration named after name into
// dir and returns its path. Names of the form "create_<table>" get a table
// skeleton with the id and timestamp columns every recruitdesk table carries.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createAt(dir, name, time.Now().UTC())
}

func createAt(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version := now
	// Scan errors are left to ValidateDir; only the known versions matter here.
	existing, _ := Scan(dir)
	if n := len(existing); n > 0 {
		last, err := time.Parse(versionLayout, fmt.Sprintf("%d", existing[n-1].Version))
		if err == nil && !version.After(last) {
			version = last.Add(time.Second)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), slug))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(migrationBody(slug)); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

func migrationBody(slug string) string {
	table, ok := strings.CutPrefix(slug, "create_")
	if !ok || table == "" {
		return fmt.Sprintf("%s\n-- %s\n\n%s\n-- undo %s\nSELECT 1;\n", upMarker, slug, downMarker, slug)
	}
	return fmt.Sprintf(`%s
CREATE TABLE IF NOT EXISTS %s (
    id CHAR(36) PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

%s
DROP TABLE IF EXISTS %s;
`, upMarker, table, downMarker, table)
}
