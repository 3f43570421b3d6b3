// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// Racha is a tenant: one informal soccer group with its own match history.
type Racha struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Side identifies one of the two teams of a match.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// PlayerEvent attributes a goal, an assist or a presence to a player.
// Team holds either the side ("A"/"B") or the team name as typed by the organizer.
type PlayerEvent struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
	Team       string `json:"team,omitempty"`
}

// Match is one game of a racha. Only finalized matches feed the statistics.
// A zero Date means the date is unknown or could not be parsed.
type Match struct {
	ID           string        `json:"id"`
	RachaID      string        `json:"rachaId"`
	Date         time.Time     `json:"date"`
	Finalizada   bool          `json:"finalizada"`
	TeamAName    string        `json:"teamAName"`
	TeamBName    string        `json:"teamBName"`
	GoalsA       int           `json:"goalsA"`
	GoalsB       int           `json:"goalsB"`
	GoalEvents   []PlayerEvent `json:"goalEvents"`
	AssistEvents []PlayerEvent `json:"assistEvents"`
	Attendance   []PlayerEvent `json:"attendance"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// MatchResult is the payload that closes a match.
type MatchResult struct {
	GoalsA       int
	GoalsB       int
	GoalEvents   []PlayerEvent
	AssistEvents []PlayerEvent
	Attendance   []PlayerEvent
}

// PlayerStat is a read-only ranking row derived from match events.
type PlayerStat struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	Draws    int    `json:"draws"`
	Losses   int    `json:"losses"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
	Points   int    `json:"points"`
}

// TeamStat is a read-only standings row derived from final scores.
type TeamStat struct {
	TeamName       string `json:"teamName"`
	Games          int    `json:"games"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

// Period selects which matches a report covers.
type Period string

const (
	PeriodHistorico Period = "historico"
	PeriodAno       Period = "ano"
)

// StatsReport is the response envelope of the statistics endpoints.
type StatsReport[T any] struct {
	RachaID        string     `json:"rachaId"`
	Period         Period     `json:"periodo"`
	Year           *int       `json:"ano"`
	AvailableYears []int      `json:"availableYears"`
	Results        []T        `json:"results"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}
