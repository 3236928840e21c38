// Package matching scores how well a candidate's skills cover a job's skills.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// Score returns 100 * |candidate ∩ job| / |job| over case-insensitive skill
// sets, rounded to two decimals. A job without skills scores 0 with no matches.
func Score(candidate domain.CandidateProfile, job domain.JobSkillProfile) domain.MatchResult {
	jobSet := skillSet(job.Skills)
	if len(jobSet) == 0 {
		return domain.MatchResult{Score: 0, MatchedSkills: []string{}}
	}
	have := skillSet(candidate.Skills)
	matched := make([]string, 0, len(jobSet))
	for s := range jobSet {
		if _, ok := have[s]; ok {
			matched = append(matched, s)
		}
	}
	sort.Strings(matched)
	return domain.MatchResult{
		Score:         Round2(100 * float64(len(matched)) / float64(len(jobSet))),
		MatchedSkills: matched,
	}
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

func skillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
