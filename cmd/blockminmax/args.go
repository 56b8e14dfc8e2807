package main

import "strings"

// valueFlags take their value from the following argument when it is not
// attached.
var valueFlags = map[string]bool{
	"-R": true, "--region": true,
	"-I": true, "--inc": true,
	"-o": true, "--output": true,
	"--path":           true,
	"--addressing":     true,
	"--update":         true,
	"--format":         true,
	"--config":         true,
	"--progress-every": true,
	"--heatmap":        true,
	"--html":           true,
	"--runs-db":        true,
	"--limit":          true,
}

// normalizeArgs rewrites the single-dash spellings accepted by the
// original blockminmax tool into flags cobra understands:
//
//	-PATH f, -path f  ->  --path f
//	-MAX              ->  --max
//	Rxmin/xmax/...    ->  --region=xmin/xmax/...
//
// Arguments after "--" and values of flags that take one are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return append(out, args[i:]...)
		case a == "-PATH" || a == "-path":
			out = append(out, "--path")
			continue
		case strings.HasPrefix(a, "-PATH=") || strings.HasPrefix(a, "-path="):
			out = append(out, "--path="+a[len("-PATH="):])
			continue
		case a == "-MAX":
			out = append(out, "--max")
			continue
		case isBareRegion(a):
			out = append(out, "--region="+a[1:])
			continue
		}
		out = append(out, a)
		if valueFlags[a] && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// isBareRegion reports whether a is a region written without a dash, such
// as "R0/10/0/10".
func isBareRegion(a string) bool {
	return len(a) > 1 && (a[0] == 'R' || a[0] == 'r') && strings.Count(a, "/") == 3
}
