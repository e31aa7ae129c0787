package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// execFunc runs a single migration script or statement.
type execFunc func(ctx context.Context, sql string) error

// listScripts returns the .sql files of dir in lexical order (001_, 002_, ...).
func listScripts(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// apply executes every script of dir. With split set, scripts are executed
// statement by statement (drivers without multi-statement Exec).
func apply(ctx context.Context, fsys fs.FS, dir string, split bool, exec execFunc) error {
	files, err := listScripts(fsys, dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		script := string(data)
		if strings.TrimSpace(script) == "" {
			continue
		}

		stmts := []string{script}
		if split {
			if err := validateNoSemicolonInStrings(script); err != nil {
				return fmt.Errorf("validate migration %s: %w", file, err)
			}
			stmts = splitStatements(script)
		}

		for _, stmt := range stmts {
			if err := exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
		}
	}
	return nil
}

// splitStatements splits a script on semicolons after dropping -- comment lines.
// Semicolons inside string literals are not supported; validateNoSemicolonInStrings
// rejects such scripts before splitting.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings reports a semicolon inside a single-quoted literal.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				i++ // escaped quote
				continue
			}
			inString = !inString
		case ';':
			if inString {
				return fmt.Errorf("semicolon inside string literal at offset %d", i)
			}
		}
	}
	return nil
}
