// If you are AI: This script enforces that all files have AI headers and that every
// function and exported type carries a doc comment. Test files are exempt.
// Run with: go run scripts/check_comments.go .

//go:build ignore

package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// main walks the given directory and reports header and comment violations.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <directory>\n", os.Args[0])
		os.Exit(1)
	}

	var failures []string
	err := filepath.WalkDir(os.Args[1], func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != os.Args[1] && (name == "vendor" || name == "testdata" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		failures = append(failures, checkFile(path, data)...)
		return nil
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking directory: %v\n", err)
		os.Exit(1)
	}

	if len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "Comment violations:\n")
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
		os.Exit(1)
	}
}

// checkFile returns the violations found in one source file.
func checkFile(path string, data []byte) []string {
	var failures []string
	if !strings.Contains(string(data), "If you are AI:") {
		failures = append(failures, fmt.Sprintf("%s: missing 'If you are AI:' header", path))
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, data, parser.ParseComments)
	if err != nil {
		// Files that do not parse are reported by the compiler instead
		return failures
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc == nil || len(d.Doc.List) == 0 {
				failures = append(failures, fmt.Sprintf("%s:%d: function %s missing comment",
					path, fset.Position(d.Pos()).Line, d.Name.Name))
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.Name.IsExported() && d.Doc == nil && ts.Doc == nil {
					failures = append(failures, fmt.Sprintf("%s:%d: type %s missing comment",
						path, fset.Position(ts.Pos()).Line, ts.Name.Name))
				}
			}
		}
	}
	return failures
}
