package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/multierr"
)

const (
	versionLayout = "20060102150405"
	upMarker      = "-- +goose Up"
	downMarker    = "-- +goose Down"
)

var (
	fileNameRe = regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)

	// The same files run on postgres, mysql and sqlite.
	driverSpecific = []string{"jsonb", "gen_random_uuid", "uuid[]", "create type", "auto_increment"}

	// Assignment dates keep whatever the executive typed, so their columns
	// must stay textual.
	typedFollowUpDateRe = regexp.MustCompile(`(?i)\b(next_follow_up_date|interview_date|expected_joining_date)\s+(date|timestamp|datetime)\b`)
)

// File is one goose migration found on disk.
type File struct {
	Version int64
	Name    string
	Path    string
}

// Scan lists the SQL migrations in dir ordered by version. Files that do not
// follow the naming scheme are reported as errors.
func Scan(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []File
	var errs error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if !fileNameRe.MatchString(name) {
			errs = multierr.Append(errs, fmt.Errorf("%s: expected YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		if _, err := time.Parse(versionLayout, name[:14]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: version is not a UTC timestamp", name))
			continue
		}
		version, err := goose.NumericComponent(name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		files = append(files, File{Version: version, Name: name, Path: filepath.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, errs
}

// ValidateDir checks every migration in dir and reports all problems at once.
func ValidateDir(dir string) error {
	files, errs := Scan(dir)
	if len(files) == 0 && errs == nil {
		return fmt.Errorf("no migrations found in %q", dir)
	}

	for i, f := range files {
		if i > 0 && files[i-1].Version == f.Version {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %d already used by %s", f.Name, f.Version, files[i-1].Name))
		}
		body, err := os.ReadFile(f.Path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", f.Path, err))
			continue
		}
		for _, problem := range checkBody(string(body)) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", f.Name, problem))
		}
	}
	return errs
}

func checkBody(sql string) []string {
	var problems []string
	up := strings.Index(sql, upMarker)
	down := strings.Index(sql, downMarker)
	switch {
	case up < 0:
		problems = append(problems, "missing "+upMarker)
	case down < 0:
		problems = append(problems, "missing "+downMarker)
	case down < up:
		problems = append(problems, "down section comes before up section")
	case !hasStatement(sql[down+len(downMarker):]):
		problems = append(problems, "down section has no statement")
	}

	lower := strings.ToLower(sql)
	for _, construct := range driverSpecific {
		if strings.Contains(lower, construct) {
			problems = append(problems, fmt.Sprintf("%q does not run on every supported driver", construct))
		}
	}
	if m := typedFollowUpDateRe.FindStringSubmatch(sql); m != nil {
		problems = append(problems, fmt.Sprintf("%s must be stored as text, not %s", m[1], strings.ToUpper(m[2])))
	}
	return problems
}

func hasStatement(section string) bool {
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return true
		}
	}
	return false
}
