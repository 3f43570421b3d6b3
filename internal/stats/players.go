package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/maxviazov/racha-stats-service/internal/model"
)

// ComputePlayerStats builds the player ranking of the given matches.
//
// Goal and assist events credit goals and assists. A player takes part in a match when they
// appear in its attendance, goal or assist lists, and their side is taken from the first of
// those that names a side. Each participation adds one game with its win, draw or loss and
// 3/1/0 points; goals and assists do not add points. When the side of a player cannot be
// resolved their goals and assists still count but no game is recorded, since the result
// of that game is unknown.
//
// The display name is the one used in the most recently dated match; spellings seen on the
// same date resolve to the smallest, so input order never changes the result.
//
// Rows are ordered by points, goals and assists (all descending), then name and player id.
func ComputePlayerStats(matches []model.Match) []model.PlayerStat {
	index := make(map[string]*playerEntry)
	get := func(ev model.PlayerEvent, at time.Time) *playerEntry {
		id := strings.TrimSpace(ev.PlayerID)
		e, ok := index[id]
		if !ok {
			e = &playerEntry{id: id}
			index[id] = e
		}
		if n := strings.TrimSpace(ev.PlayerName); n != "" {
			e.rename(n, at)
		}
		return e
	}

	for _, m := range matches {
		if !m.Finalizada {
			continue
		}
		sides := make(map[string]model.Side)
		seen := make(map[string]struct{})
		involve := func(ev model.PlayerEvent) *playerEntry {
			e := get(ev, m.Date)
			seen[e.id] = struct{}{}
			if _, ok := sides[e.id]; !ok {
				if side, ok := ResolveSide(m, ev.Team); ok {
					sides[e.id] = side
				}
			}
			return e
		}

		for _, ev := range m.Attendance {
			if hasPlayer(ev) {
				involve(ev)
			}
		}
		for _, ev := range m.GoalEvents {
			if hasPlayer(ev) {
				involve(ev).goals++
			}
		}
		for _, ev := range m.AssistEvents {
			if hasPlayer(ev) {
				involve(ev).assists++
			}
		}

		for id := range seen {
			side, ok := sides[id]
			if !ok {
				continue
			}
			index[id].rec.add(decide(scoreFor(m, side)))
		}
	}

	out := make([]model.PlayerStat, 0, len(index))
	for _, e := range index {
		out = append(out, e.stat())
	}
	sort.SliceStable(out, func(i, j int) bool { return lessPlayer(out[i], out[j]) })
	return out
}

type playerEntry struct {
	id, name       string
	nameAt         time.Time
	rec            record
	goals, assists int
}

// rename keeps the newest spelling; unknown dates are older than any known one.
func (e *playerEntry) rename(n string, at time.Time) {
	switch {
	case e.name == "", at.After(e.nameAt):
	case at.Equal(e.nameAt) && n < e.name:
	default:
		return
	}
	e.name, e.nameAt = n, at
}

func (e *playerEntry) stat() model.PlayerStat {
	name := e.name
	if name == "" {
		name = e.id
	}
	return model.PlayerStat{
		PlayerID: e.id,
		Name:     name,
		Games:    e.rec.games,
		Wins:     e.rec.wins,
		Draws:    e.rec.draws,
		Losses:   e.rec.losses,
		Goals:    e.goals,
		Assists:  e.assists,
		Points:   e.rec.points,
	}
}

func hasPlayer(ev model.PlayerEvent) bool { return strings.TrimSpace(ev.PlayerID) != "" }

func lessPlayer(a, b model.PlayerStat) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.Goals != b.Goals {
		return a.Goals > b.Goals
	}
	if a.Assists != b.Assists {
		return a.Assists > b.Assists
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.PlayerID < b.PlayerID
}
