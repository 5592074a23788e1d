// Package model contains domain models passed between layers.
package model

// Level is a difficulty level a game can be played at.
type Level string

// Supported levels. Matching is exact and case-sensitive.
const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// Levels lists every supported level in column order.
var Levels = []Level{LevelEasy, LevelMedium, LevelHard}

// Valid reports whether l is a supported level.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

// AvgColumn is the store column holding the level's average raw time.
func (l Level) AvgColumn() string { return string(l) + "_avg" }

// GamesColumn is the store column holding the level's game count.
func (l Level) GamesColumn() string { return string(l) + "_games" }

// Store column names.
const (
	ColumnName         = "name"
	ColumnOverallAvg   = "overall_avg"
	ColumnOverallGames = "overall_games"
)

// LevelStats is the running aggregate for one level.
type LevelStats struct {
	Avg   float64
	Games int
}

// PlayerRecord is one row of the scores table, keyed by canonical name.
//
// OverallAvg is nullable in storage; nil sorts last on the leaderboard and
// reads as zero when the record is updated.
type PlayerRecord struct {
	Name         string   `json:"name" bson:"name"`
	OverallAvg   *float64 `json:"overall_avg" bson:"overall_avg"`
	OverallGames int      `json:"overall_games" bson:"overall_games"`
	EasyAvg      float64  `json:"easy_avg" bson:"easy_avg"`
	EasyGames    int      `json:"easy_games" bson:"easy_games"`
	MediumAvg    float64  `json:"medium_avg" bson:"medium_avg"`
	MediumGames  int      `json:"medium_games" bson:"medium_games"`
	HardAvg      float64  `json:"hard_avg" bson:"hard_avg"`
	HardGames    int      `json:"hard_games" bson:"hard_games"`
}

// Overall returns the overall aggregate, reading a null average as zero.
func (r PlayerRecord) Overall() LevelStats {
	var avg float64
	if r.OverallAvg != nil {
		avg = *r.OverallAvg
	}
	return LevelStats{Avg: avg, Games: r.OverallGames}
}

// Stats returns the aggregate for level l. Unknown levels yield zero stats.
func (r PlayerRecord) Stats(l Level) LevelStats {
	switch l {
	case LevelEasy:
		return LevelStats{Avg: r.EasyAvg, Games: r.EasyGames}
	case LevelMedium:
		return LevelStats{Avg: r.MediumAvg, Games: r.MediumGames}
	case LevelHard:
		return LevelStats{Avg: r.HardAvg, Games: r.HardGames}
	}
	return LevelStats{}
}

// SetStats overwrites the aggregate for level l.
func (r *PlayerRecord) SetStats(l Level, s LevelStats) {
	switch l {
	case LevelEasy:
		r.EasyAvg, r.EasyGames = s.Avg, s.Games
	case LevelMedium:
		r.MediumAvg, r.MediumGames = s.Avg, s.Games
	case LevelHard:
		r.HardAvg, r.HardGames = s.Avg, s.Games
	}
}

// Patch is a partial update of an existing record: the name, the overall
// aggregate, and exactly one level's aggregate. Other levels are untouched.
type Patch struct {
	Name    string
	Overall LevelStats
	Level   Level
	Stats   LevelStats
}

// Columns renders the patch as a column -> value map for row stores.
func (p Patch) Columns() map[string]any {
	return map[string]any{
		ColumnName:           p.Name,
		ColumnOverallAvg:     p.Overall.Avg,
		ColumnOverallGames:   p.Overall.Games,
		p.Level.AvgColumn():   p.Stats.Avg,
		p.Level.GamesColumn(): p.Stats.Games,
	}
}

// ApplyTo writes the patched fields onto r.
func (p Patch) ApplyTo(r *PlayerRecord) {
	avg := p.Overall.Avg
	r.Name = p.Name
	r.OverallAvg = &avg
	r.OverallGames = p.Overall.Games
	r.SetStats(p.Level, p.Stats)
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }
