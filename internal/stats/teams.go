package stats

import (
	"sort"
	"strings"

	"github.com/maxviazov/racha-stats-service/internal/model"
)

// ComputeTeamStats builds the standings table of the given matches.
//
// Each finalized match credits goalsA/goalsB to teamAName/teamBName and one win, draw or loss
// to each side. Rows are ordered by points, goal difference and goals scored (all descending),
// then by team name.
func ComputeTeamStats(matches []model.Match) []model.TeamStat {
	index := make(map[string]*teamEntry)
	for _, m := range matches {
		if !m.Finalizada {
			continue
		}
		a := teamKey(m.TeamAName)
		b := teamKey(m.TeamBName)
		if a == "" || b == "" {
			continue
		}
		accumulateTeam(index, a, m.GoalsA, m.GoalsB)
		accumulateTeam(index, b, m.GoalsB, m.GoalsA)
	}

	out := make([]model.TeamStat, 0, len(index))
	for _, e := range index {
		out = append(out, e.stat())
	}
	sort.SliceStable(out, func(i, j int) bool { return lessTeam(out[i], out[j]) })
	return out
}

type teamEntry struct {
	name                   string
	rec                    record
	goalsFor, goalsAgainst int
}

func (e *teamEntry) stat() model.TeamStat {
	return model.TeamStat{
		TeamName:       e.name,
		Games:          e.rec.games,
		Wins:           e.rec.wins,
		Draws:          e.rec.draws,
		Losses:         e.rec.losses,
		GoalsFor:       e.goalsFor,
		GoalsAgainst:   e.goalsAgainst,
		GoalDifference: e.goalsFor - e.goalsAgainst,
		Points:         e.rec.points,
	}
}

func accumulateTeam(index map[string]*teamEntry, name string, scored, conceded int) {
	e, ok := index[name]
	if !ok {
		e = &teamEntry{name: name}
		index[name] = e
	}
	e.rec.add(decide(scored, conceded))
	e.goalsFor += scored
	e.goalsAgainst += conceded
}

func teamKey(name string) string { return strings.TrimSpace(name) }

func lessTeam(a, b model.TeamStat) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.TeamName < b.TeamName
}
