package service

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
)

const (
	minYear = 1900
	maxYear = 2999

	minRachaName = 2
	maxRachaName = 80
	maxTeamName  = 60
)

func normalizePage(p repository.Page) repository.Page {
	return p.Normalize()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// canonicalID lowercases and strips decorations so cache keys and queries agree.
func canonicalID(s string) string {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return id.String()
}

// parsePeriod normalizes the requested period; empty means historico.
func parsePeriod(raw string) (model.Period, bool) {
	switch model.Period(strings.ToLower(strings.TrimSpace(raw))) {
	case "", model.PeriodHistorico:
		return model.PeriodHistorico, true
	case model.PeriodAno:
		return model.PeriodAno, true
	default:
		return "", false
	}
}

func isValidYear(y int) bool { return y >= minYear && y <= maxYear }

// validateStatsQuery checks the query and returns the normalized period.
func validateStatsQuery(q StatsQuery) (model.Period, []FieldError) {
	var ferrs []FieldError
	if strings.TrimSpace(q.RachaID) == "" {
		ferrs = append(ferrs, FieldError{Field: "rachaId", Message: "is required"})
	} else if !isValidUUID(q.RachaID) {
		ferrs = append(ferrs, FieldError{Field: "rachaId", Message: "must be a UUID"})
	}
	period, ok := parsePeriod(q.Period)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "periodo", Message: "must be one of historico|ano"})
	}
	if period == model.PeriodAno {
		if q.Year == nil {
			ferrs = append(ferrs, FieldError{Field: "ano", Message: "is required when periodo=ano"})
		} else if !isValidYear(*q.Year) {
			ferrs = append(ferrs, FieldError{Field: "ano", Message: "must be between 1900 and 2999"})
		}
	}
	return period, ferrs
}

func validateEvents(field string, events []model.PlayerEvent) []FieldError {
	var ferrs []FieldError
	for i, ev := range events {
		if strings.TrimSpace(ev.PlayerID) == "" {
			ferrs = append(ferrs, FieldError{Field: indexed(field, i) + ".playerId", Message: "must not be empty"})
		}
	}
	return ferrs
}

func indexed(field string, i int) string {
	return field + "[" + strconv.Itoa(i) + "]"
}

func trimEvents(events []model.PlayerEvent) []model.PlayerEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]model.PlayerEvent, len(events))
	for i, ev := range events {
		out[i] = model.PlayerEvent{
			PlayerID:   strings.TrimSpace(ev.PlayerID),
			PlayerName: strings.TrimSpace(ev.PlayerName),
			Team:       strings.TrimSpace(ev.Team),
		}
	}
	return out
}
