// Package conformance runs the staged fixture programs through the
// compiler: lexing, parsing, simulating the generated code, and building
// and running it next to a reference C compiler.
package conformance

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Case is one fixture file.
type Case struct {
	Name  string // path relative to the fixture root, slash separated
	Path  string
	Stage int
	Valid bool
}

var stageDir = regexp.MustCompile(`^stage_?([0-9]+)$`)

// Discover finds the fixtures of stages 1 through maxStage under root. A
// stage directory is named stage_N or stageN and holds valid/ and
// invalid/ subdirectories of .c files; .c files directly inside the stage
// directory count as valid. maxStage <= 0 selects every stage.
func Discover(root string, maxStage int) ([]Case, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read fixture root: %w", err)
	}

	var cases []Case
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := stageDir.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		stage, err := strconv.Atoi(m[1])
		if err != nil || (maxStage > 0 && stage > maxStage) {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		for _, sub := range []struct {
			path  string
			valid bool
		}{
			{dir, true},
			{filepath.Join(dir, "valid"), true},
			{filepath.Join(dir, "invalid"), false},
		} {
			found, err := sources(root, sub.path, stage, sub.valid)
			if err != nil {
				return nil, err
			}
			cases = append(cases, found...)
		}
	}

	sort.Slice(cases, func(i, j int) bool {
		a, b := cases[i], cases[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Name < b.Name
	})
	return cases, nil
}

func sources(root, dir string, stage int, valid bool) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stage directory: %w", err)
	}

	var cases []Case
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".c") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		cases = append(cases, Case{
			Name:  filepath.ToSlash(rel),
			Path:  path,
			Stage: stage,
			Valid: valid,
		})
	}
	return cases, nil
}
