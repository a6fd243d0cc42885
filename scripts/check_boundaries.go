package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "github.com/MF-patino/HerculaneumTranscriptor"

var (
	contextsPrefix  = modulePath + "/contexts/"
	contractsPrefix = modulePath + "/contracts"
	runtimePrefixes = []string{
		modulePath + "/internal/",
		modulePath + "/cmd/",
	}
)

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	root := "contexts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations := collectViolations(root)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		// contexts/<bounded-context>/<service>/<layer>/...
		servicePrefix := contextsPrefix + parts[1] + "/" + parts[2]
		violations = append(violations, validateFile(path, normalized, parts[3], servicePrefix)...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, layer string, servicePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		report := func(rule string) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   rule,
			})
		}

		if strings.HasPrefix(importPath, contextsPrefix) && !hasPrefix(importPath, servicePrefix) {
			report("cross-module imports are forbidden; share types through contracts")
		}

		allowed, restricted := layerAllowlist(layer, servicePrefix)
		if !restricted {
			continue
		}
		if strings.Contains(importPath, "/adapters/") {
			report(layer + " must not import adapters")
		}
		if isRuntime(importPath) {
			report(layer + " must not import runtime infrastructure")
		}
		if !isStdlib(importPath) && !isAllowed(importPath, allowed) {
			report(layer + " import is outside explicit allowlist")
		}
	}

	return violations
}

// layerAllowlist returns the non-stdlib imports a layer may use. Layers
// outside the hexagon core (adapters, transport, module wiring) are not
// restricted beyond the cross-module rule.
func layerAllowlist(layer string, servicePrefix string) ([]string, bool) {
	switch layer {
	case "domain":
		return []string{servicePrefix + "/domain", contractsPrefix}, true
	case "ports":
		return []string{servicePrefix + "/domain", contractsPrefix}, true
	case "application":
		return []string{
			servicePrefix + "/application",
			servicePrefix + "/domain",
			servicePrefix + "/ports",
			contractsPrefix,
		}, true
	default:
		return nil, false
	}
}

func isRuntime(importPath string) bool {
	for _, p := range runtimePrefixes {
		if strings.HasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
