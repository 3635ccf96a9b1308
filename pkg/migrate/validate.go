package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateTree validates the driver folders under root on disk.
func ValidateTree(root string) error {
	if root == "" {
		return fmt.Errorf("root is required")
	}
	return ValidateFS(os.DirFS(root))
}

// ValidateFS checks filenames and goose headers in every driver folder of
// fsys, then that all drivers carry the same migration names.
func ValidateFS(fsys fs.FS) error {
	var (
		reference      []string
		referenceOwner string
	)
	for _, driver := range Drivers {
		names, err := validateDir(fsys, Subdir(driver))
		if err != nil {
			return err
		}
		if reference == nil {
			reference, referenceOwner = names, driver
			continue
		}
		if missing := diff(reference, names); len(missing) > 0 {
			return fmt.Errorf("%s is missing migrations present for %s: %s", driver, referenceOwner, strings.Join(missing, ", "))
		}
		if extra := diff(names, reference); len(extra) > 0 {
			return fmt.Errorf("%s has migrations missing for %s: %s", driver, referenceOwner, strings.Join(extra, ", "))
		}
	}
	return nil
}

func validateDir(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %s/%s (expected YYYYMMDDHHMMSS_name.sql)", dir, name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %s: %q and %q", version, dir, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %s/%s: %w", dir, name, err)
		}
		txt := string(b)
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(txt, marker) {
				return nil, fmt.Errorf("migration %s/%s missing %q", dir, name, marker)
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// diff returns the entries of a that are not in b.
func diff(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, n := range b {
		in[n] = struct{}{}
	}
	var out []string
	for _, n := range a {
		if _, ok := in[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
