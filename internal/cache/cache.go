package cache

import (
	"context"
	"strconv"
	"strings"
)

// Kind names the report family stored under a key.
type Kind string

const (
	KindStandings Kind = "classificacao"
	KindRanking   Kind = "ranking"
)

// Key identifies one cached stats report. Gen is the racha's cache generation read before
// the report's matches were loaded; a report computed before an invalidation lands under an
// old generation and is never read again.
type Key struct {
	RachaID string
	Gen     int64
	Kind    Kind
	Period  string
	Year    *int
}

// String renders the key as stats:<racha>:<gen>:<kind>:<period>:<year|all>.
func (k Key) String() string {
	year := "all"
	if k.Year != nil {
		year = strconv.Itoa(*k.Year)
	}
	gen := strconv.FormatInt(k.Gen, 10)
	return strings.Join([]string{"stats", k.RachaID, gen, string(k.Kind), k.Period, year}, ":")
}

func rachaPattern(rachaID string) string {
	return "stats:" + rachaID + ":*"
}

// genKey lives outside rachaPattern so invalidation never deletes the counter.
func genKey(rachaID string) string {
	return "statsgen:" + rachaID
}

// Stats caches computed reports. A miss is (false, nil).
type Stats interface {
	// Generation returns the current cache generation of a racha, 0 when never invalidated.
	Generation(ctx context.Context, rachaID string) (int64, error)
	Load(ctx context.Context, key Key, dst any) (bool, error)
	Store(ctx context.Context, key Key, v any) error
	// InvalidateRacha bumps the racha's generation and drops its stored reports.
	InvalidateRacha(ctx context.Context, rachaID string) error
}

// Noop never stores anything; used when Redis is disabled.
type Noop struct{}

func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Load(context.Context, Key, any) (bool, error) { return false, nil }
func (Noop) Store(context.Context, Key, any) error { return nil }
func (Noop) InvalidateRacha(context.Context, string) error { return nil }

var _ Stats = Noop{}
