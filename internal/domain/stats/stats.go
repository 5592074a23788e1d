// Package stats implements submission validation and the running-average
// update applied to a player's aggregate record.
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/scoreboard/internal/domain/model"
)

// Difficulty multipliers applied to raw time for the overall average.
const (
	easyMultiplier   = 1.5
	mediumMultiplier = 1.0
	hardMultiplier   = 0.5
)

// Multiplier returns the difficulty multiplier for l, or 0 and false when l
// is not a supported level.
func Multiplier(l model.Level) (float64, bool) {
	switch l {
	case model.LevelEasy:
		return easyMultiplier, true
	case model.LevelMedium:
		return mediumMultiplier, true
	case model.LevelHard:
		return hardMultiplier, true
	}
	return 0, false
}

// NormalizeName returns the canonical key for a player name: trimmed,
// lowercased, with only the first character uppercased.
func NormalizeName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Submission is a validated game result.
type Submission struct {
	Name  string
	Time  float64
	Level model.Level
}

// Adjusted returns the raw time scaled by the level's multiplier.
func (s Submission) Adjusted() float64 {
	m, _ := Multiplier(s.Level)
	return s.Time * m
}

// Parse validates loosely typed request fields and builds a Submission.
// Checks run in order: name, time, level.
func Parse(name, t, level any) (Submission, error) {
	n, err := parseName(name)
	if err != nil {
		return Submission{}, err
	}
	tm, err := parseTime(t)
	if err != nil {
		return Submission{}, err
	}
	l, err := parseLevel(level)
	if err != nil {
		return Submission{}, err
	}
	s := Submission{Name: n, Time: tm, Level: l}
	if !finite(s.Adjusted()) {
		return Submission{}, fmt.Errorf("%w: adjusted time not finite", ErrInvalidTime)
	}
	return s, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Finite reports whether every average in rec is a finite number.
func Finite(rec model.PlayerRecord) bool {
	if rec.OverallAvg != nil && !finite(*rec.OverallAvg) {
		return false
	}
	for _, l := range model.Levels {
		if st := rec.Stats(l); st.Games > 0 && !finite(st.Avg) {
			return false
		}
	}
	return true
}

// FinitePatch reports whether both averages carried by p are finite numbers.
func FinitePatch(p model.Patch) bool {
	return finite(p.Overall.Avg) && finite(p.Stats.Avg)
}

func parseName(v any) (string, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", ErrMissingName
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case bool:
		s = strconv.FormatBool(x)
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidName, v)
	}
	n := NormalizeName(s)
	if n == "" {
		return "", ErrMissingName
	}
	return n, nil
}

func parseTime(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, ErrMissingTime
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, x.String())
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, x)
		}
		f = p
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidTime, v)
	}
	if !finite(f) {
		return 0, fmt.Errorf("%w: not finite", ErrInvalidTime)
	}
	return f, nil
}

func parseLevel(v any) (model.Level, error) {
	s, ok := v.(string)
	if !ok {
		return "", ErrInvalidLevel
	}
	l := model.Level(s)
	if !l.Valid() {
		return "", ErrInvalidLevel
	}
	return l, nil
}

// RunningMean folds value into a mean over count samples and returns the new
// mean and count.
func RunningMean(avg float64, count int, value float64) (float64, int) {
	next := count + 1
	return (avg*float64(count) + value) / float64(next), next
}

// NewRecord builds the first record for a player from one submission.
func NewRecord(s Submission) model.PlayerRecord {
	rec := model.PlayerRecord{
		Name:         s.Name,
		OverallAvg:   model.Float(s.Adjusted()),
		OverallGames: 1,
	}
	rec.SetStats(s.Level, model.LevelStats{Avg: s.Time, Games: 1})
	return rec
}

// Next computes the patch that folds s into prev. Only the overall aggregate
// and the submitted level change.
func Next(prev model.PlayerRecord, s Submission) model.Patch {
	overall := prev.Overall()
	level := prev.Stats(s.Level)

	oAvg, oGames := RunningMean(overall.Avg, overall.Games, s.Adjusted())
	lAvg, lGames := RunningMean(level.Avg, level.Games, s.Time)

	return model.Patch{
		Name:    s.Name,
		Overall: model.LevelStats{Avg: oAvg, Games: oGames},
		Level:   s.Level,
		Stats:   model.LevelStats{Avg: lAvg, Games: lGames},
	}
}
