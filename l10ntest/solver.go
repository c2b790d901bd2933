package l10ntest

import "strconv"

// SolverScenario is a presence matrix: Cache[res][src] reports whether source
// src holds resource res. Solution is the greedy pick per resource, -1 when
// no source holds it.
type SolverScenario struct {
	Name     string
	Width    int
	Depth    int
	Cache    [][]bool
	Solution []int
}

// Has reports whether src holds res
func (s SolverScenario) Has(res, src int) bool {
	if res < 0 || res >= len(s.Cache) {
		return false
	}
	row := s.Cache[res]
	if src < 0 || src >= len(row) {
		return false
	}
	return row[src]
}

// Files renders the matrix as a file map for a scenario registry. Source i
// uses the scheme "src<i>/{locale}/" and resource r is "res<r>.ftl".
func (s SolverScenario) Files(locale string) []map[string]string {
	out := make([]map[string]string, s.Depth)
	for src := 0; src < s.Depth; src++ {
		out[src] = map[string]string{}
		for res := 0; res < s.Width; res++ {
			if s.Has(res, src) {
				out[src][SolverSourceScheme(src, locale)+SolverResource(res)] = ""
			}
		}
	}
	return out
}

func SolverSourceScheme(src int, locale string) string {
	return "src" + strconv.Itoa(src) + "/" + locale + "/"
}

func SolverResource(res int) string {
	return "res" + strconv.Itoa(res) + ".ftl"
}

func SolverScenarios() []SolverScenario {
	return []SolverScenario{
		{
			Name:     "no_resources",
			Width:    0,
			Depth:    2,
			Cache:    nil,
			Solution: []int{},
		},
		{
			Name:     "one_source_complete",
			Width:    3,
			Depth:    1,
			Cache:    [][]bool{{true}, {true}, {true}},
			Solution: []int{0, 0, 0},
		},
		{
			Name:  "first_source_wins_ties",
			Width: 2,
			Depth: 2,
			Cache: [][]bool{
				{true, true},
				{true, true},
			},
			Solution: []int{0, 0},
		},
		{
			Name:  "mixed_sources",
			Width: 3,
			Depth: 3,
			Cache: [][]bool{
				{false, true, true},
				{true, false, false},
				{false, false, true},
			},
			Solution: []int{1, 0, 2},
		},
		{
			Name:  "one_resource_missing",
			Width: 3,
			Depth: 2,
			Cache: [][]bool{
				{true, false},
				{false, false},
				{false, true},
			},
			Solution: []int{0, -1, 1},
		},
		{
			Name:  "nothing_present",
			Width: 2,
			Depth: 2,
			Cache: [][]bool{
				{false, false},
				{false, false},
			},
			Solution: []int{-1, -1},
		},
	}
}
