package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Drivers lists the dialect directories every migration is written for
var Drivers = []string{"sqlite", "postgres"}

const migrationUpTemplate = `-- Migration: {{.Name}} ({{.Driver}})
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`

const migrationDownTemplate = `-- Migration: {{.Name}} ({{.Driver}}, rollback)
-- Created: {{.Timestamp}}
-- Description: Rollback for {{.Description}}

`

// MigrationFile describes one up/down pair of a single dialect
type MigrationFile struct {
	Version     string
	Name        string
	Driver      string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair into baseDir/<driver> for every
// supported driver. Versions are sequential (000003, 000004, ...) and shared by
// all dialects so the embedded sets stay aligned.
func CreateMigration(baseDir, name, description string) ([]*MigrationFile, error) {
	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	next := uint64(0)
	for _, driver := range Drivers {
		v, err := latestVersion(filepath.Join(baseDir, driver))
		if err != nil {
			return nil, err
		}
		if v > next {
			next = v
		}
	}
	next++

	version := fmt.Sprintf("%06d", next)
	timestamp := time.Now().Format(time.RFC3339)
	created := make([]*MigrationFile, 0, len(Drivers))

	for _, driver := range Drivers {
		dir := filepath.Join(baseDir, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}

		base := version + "_" + safe
		mf := &MigrationFile{
			Version:     version,
			Name:        name,
			Driver:      driver,
			Description: description,
			Timestamp:   timestamp,
			UpPath:      filepath.Join(dir, base+".up.sql"),
			DownPath:    filepath.Join(dir, base+".down.sql"),
		}

		if err := createMigrationFile(mf.UpPath, migrationUpTemplate, mf); err != nil {
			removeFiles(created)
			return nil, fmt.Errorf("failed to create up migration: %w", err)
		}
		if err := createMigrationFile(mf.DownPath, migrationDownTemplate, mf); err != nil {
			_ = os.Remove(mf.UpPath)
			removeFiles(created)
			return nil, fmt.Errorf("failed to create down migration: %w", err)
		}
		created = append(created, mf)
	}

	return created, nil
}

func removeFiles(files []*MigrationFile) {
	for _, f := range files {
		_ = os.Remove(f.UpPath)
		_ = os.Remove(f.DownPath)
	}
}

func createMigrationFile(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName converts a migration name to a safe file name format
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c >= '0' && c <= '9':
			result = append(result, c)
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	if len(result) > 0 && result[len(result)-1] == '_' {
		result = result[:len(result)-1]
	}
	return string(result)
}

func latestVersion(dir string) (uint64, error) {
	names, err := ListMigrations(dir)
	if err != nil {
		return 0, err
	}
	var latest uint64
	for _, n := range names {
		prefix, _, _ := strings.Cut(n, "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}

// ListMigrations returns the sorted base names of the migrations in a directory
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			migrations = append(migrations, base)
		}
	}
	sort.Strings(migrations)
	return migrations, nil
}
