package project

import "sort"

// signalTable maps dependency manifest keys to fingerprint tags. Curated
// alongside the catalog's declared triggers; matching is exact name lookup,
// no fuzz and no inference.
var signalTable = map[string]string{
	"next":                  "nextjs",
	"react":                 "react",
	"react-dom":             "react",
	"tailwindcss":           "tailwind",
	"zod":                   "zod",
	"@supabase/supabase-js": "supabase",
	"@supabase/ssr":         "supabase",
	"typescript":            "typescript",
	"vitest":                "testing",
	"jest":                  "testing",
}

// detectTags maps manifest dependency names through the signal table into a
// sorted, de-duplicated tag list.
func detectTags(deps map[string]string) []string {
	seen := map[string]bool{}
	for name := range deps {
		if tag, ok := signalTable[name]; ok {
			seen[tag] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
