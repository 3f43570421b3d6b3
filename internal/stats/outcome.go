package stats

import (
	"strings"

	"github.com/maxviazov/racha-stats-service/internal/model"
)

const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0
)

type outcome int

const (
	loss outcome = iota
	draw
	win
)

func decide(scored, conceded int) outcome {
	switch {
	case scored > conceded:
		return win
	case scored < conceded:
		return loss
	default:
		return draw
	}
}

func (o outcome) points() int {
	switch o {
	case win:
		return pointsWin
	case draw:
		return pointsDraw
	default:
		return pointsLoss
	}
}

// record is the W/D/L ledger shared by players and teams; it keeps wins+draws+losses == games.
type record struct {
	games, wins, draws, losses, points int
}

func (r *record) add(o outcome) {
	r.games++
	r.points += o.points()
	switch o {
	case win:
		r.wins++
	case draw:
		r.draws++
	default:
		r.losses++
	}
}

// ResolveSide maps an event's team label to a side of m.
// The label may be a team name or the side letter, compared case-insensitively. Team names
// win over letters, so a team called "B" playing on side A resolves to A.
func ResolveSide(m model.Match, team string) (model.Side, bool) {
	t := strings.TrimSpace(team)
	if t == "" {
		return "", false
	}
	switch {
	case m.TeamAName != "" && strings.EqualFold(t, strings.TrimSpace(m.TeamAName)):
		return model.SideA, true
	case m.TeamBName != "" && strings.EqualFold(t, strings.TrimSpace(m.TeamBName)):
		return model.SideB, true
	case strings.EqualFold(t, string(model.SideA)):
		return model.SideA, true
	case strings.EqualFold(t, string(model.SideB)):
		return model.SideB, true
	}
	return "", false
}

// scoreFor returns (scored, conceded) from the point of view of side.
func scoreFor(m model.Match, side model.Side) (int, int) {
	if side == model.SideA {
		return m.GoalsA, m.GoalsB
	}
	return m.GoalsB, m.GoalsA
}
