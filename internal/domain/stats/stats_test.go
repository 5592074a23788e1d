package stats_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func TestNormalizeName(t *testing.T) {
	Convey("Given raw player names", t, func() {
		Convey("Then whitespace and case are canonicalized", func() {
			So(stats.NormalizeName(" BOB "), ShouldEqual, "Bob")
			So(stats.NormalizeName("  bOB  "), ShouldEqual, "Bob")
			So(stats.NormalizeName("bob"), ShouldEqual, "Bob")
			So(stats.NormalizeName("Bob"), ShouldEqual, "Bob")
			So(stats.NormalizeName("mary ann"), ShouldEqual, "Mary ann")
		})

		Convey("Then normalization is idempotent", func() {
			for _, raw := range []string{"  bOB  ", "ALICE", "émile", "x", "42abc"} {
				once := stats.NormalizeName(raw)
				So(stats.NormalizeName(once), ShouldEqual, once)
			}
		})

		Convey("Then the first rune is uppercased, not the first byte", func() {
			So(stats.NormalizeName("ÉMILE"), ShouldEqual, "Émile")
		})

		Convey("Then blank names normalize to empty", func() {
			So(stats.NormalizeName("   "), ShouldEqual, "")
		})
	})
}

func TestMultiplier(t *testing.T) {
	Convey("Given the supported levels", t, func() {
		cases := map[model.Level]float64{
			model.LevelEasy:   1.5,
			model.LevelMedium: 1.0,
			model.LevelHard:   0.5,
		}
		for l, want := range cases {
			m, ok := stats.Multiplier(l)
			So(ok, ShouldBeTrue)
			So(m, ShouldEqual, want)
		}

		Convey("Unknown levels have no multiplier", func() {
			_, ok := stats.Multiplier("extreme")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given loosely typed request fields", t, func() {
		Convey("When all fields are valid", func() {
			s, err := stats.Parse("  alice ", 10.0, "easy")

			Convey("Then a canonical submission is built", func() {
				So(err, ShouldBeNil)
				So(s.Name, ShouldEqual, "Alice")
				So(s.Time, ShouldEqual, 10.0)
				So(s.Level, ShouldEqual, model.LevelEasy)
				So(s.Adjusted(), ShouldEqual, 15.0)
			})
		})

		Convey("When time is a numeric string or json.Number", func() {
			a, errA := stats.Parse("bob", "12.5", "hard")
			b, errB := stats.Parse("bob", json.Number("8"), "medium")

			Convey("Then it is parsed as a float", func() {
				So(errA, ShouldBeNil)
				So(a.Time, ShouldEqual, 12.5)
				So(errB, ShouldBeNil)
				So(b.Time, ShouldEqual, 8.0)
			})
		})

		Convey("When name is a number", func() {
			s, err := stats.Parse(json.Number("007"), 1.0, "easy")

			Convey("Then it is converted to a string key", func() {
				So(err, ShouldBeNil)
				So(s.Name, ShouldEqual, "007")
			})
		})

		Convey("When the level is unrecognized", func() {
			_, err := stats.Parse("bob", 1.0, "extreme")

			Convey("Then it fails with ErrInvalidLevel", func() {
				So(errors.Is(err, stats.ErrInvalidLevel), ShouldBeTrue)
				So(errors.Is(err, stats.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the level differs only by case", func() {
			_, err := stats.Parse("bob", 1.0, "Easy")
			So(errors.Is(err, stats.ErrInvalidLevel), ShouldBeTrue)
		})

		Convey("When the level is not a string", func() {
			_, err := stats.Parse("bob", 1.0, 3.0)
			So(errors.Is(err, stats.ErrInvalidLevel), ShouldBeTrue)
		})

		Convey("When time is not numeric", func() {
			_, err := stats.Parse("bob", "fast", "easy")
			So(errors.Is(err, stats.ErrInvalidTime), ShouldBeTrue)
		})

		Convey("When time is not finite", func() {
			_, err := stats.Parse("bob", math.Inf(1), "easy")
			So(errors.Is(err, stats.ErrInvalidTime), ShouldBeTrue)
		})

		Convey("When the adjusted time overflows", func() {
			_, err := stats.Parse("eve", 1.5e308, "easy")
			So(errors.Is(err, stats.ErrInvalidTime), ShouldBeTrue)

			Convey("Then the same raw time is accepted where the multiplier shrinks it", func() {
				s, err := stats.Parse("eve", 1.5e308, "hard")
				So(err, ShouldBeNil)
				So(s.Adjusted(), ShouldEqual, 0.75e308)
			})
		})

		Convey("When time is missing", func() {
			_, err := stats.Parse("bob", nil, "easy")
			So(errors.Is(err, stats.ErrMissingTime), ShouldBeTrue)
		})

		Convey("When name is missing or blank", func() {
			_, errNil := stats.Parse(nil, 1.0, "easy")
			_, errBlank := stats.Parse("   ", 1.0, "easy")
			So(errors.Is(errNil, stats.ErrMissingName), ShouldBeTrue)
			So(errors.Is(errBlank, stats.ErrMissingName), ShouldBeTrue)
		})

		Convey("When name is a structured value", func() {
			_, err := stats.Parse(map[string]any{"first": "bob"}, 1.0, "easy")
			So(errors.Is(err, stats.ErrInvalidName), ShouldBeTrue)
		})

		Convey("When several fields are invalid", func() {
			_, err := stats.Parse("", "x", "extreme")

			Convey("Then the name is reported first", func() {
				So(errors.Is(err, stats.ErrMissingName), ShouldBeTrue)
			})
		})
	})
}

func TestRunningMean(t *testing.T) {
	Convey("Given a running mean", t, func() {
		avg, n := stats.RunningMean(0, 0, 4)
		So(avg, ShouldEqual, 4.0)
		So(n, ShouldEqual, 1)

		avg, n = stats.RunningMean(avg, n, 8)
		So(avg, ShouldEqual, 6.0)
		So(n, ShouldEqual, 2)

		avg, n = stats.RunningMean(avg, n, 0)
		So(avg, ShouldAlmostEqual, 4.0, tolerance)
		So(n, ShouldEqual, 3)
	})
}

func TestNewRecordAndNext(t *testing.T) {
	Convey("Given alice's first easy game on an empty store", t, func() {
		first, err := stats.Parse("alice", 10.0, "easy")
		So(err, ShouldBeNil)
		rec := stats.NewRecord(first)

		Convey("Then the new record carries the adjusted overall average", func() {
			So(rec.Name, ShouldEqual, "Alice")
			So(*rec.OverallAvg, ShouldEqual, 15.0)
			So(rec.OverallGames, ShouldEqual, 1)
			So(rec.EasyAvg, ShouldEqual, 10.0)
			So(rec.EasyGames, ShouldEqual, 1)
			So(rec.MediumAvg, ShouldEqual, 0.0)
			So(rec.MediumGames, ShouldEqual, 0)
			So(rec.HardAvg, ShouldEqual, 0.0)
			So(rec.HardGames, ShouldEqual, 0)
		})

		Convey("When Alice plays a medium game", func() {
			second, err := stats.Parse("Alice", 20.0, "medium")
			So(err, ShouldBeNil)
			patch := stats.Next(rec, second)
			patch.ApplyTo(&rec)

			Convey("Then only overall and medium change", func() {
				So(patch.Level, ShouldEqual, model.LevelMedium)
				So(rec.OverallGames, ShouldEqual, 2)
				So(*rec.OverallAvg, ShouldAlmostEqual, 17.5, tolerance)
				So(rec.MediumAvg, ShouldEqual, 20.0)
				So(rec.MediumGames, ShouldEqual, 1)
				So(rec.EasyAvg, ShouldEqual, 10.0)
				So(rec.EasyGames, ShouldEqual, 1)
				So(rec.HardGames, ShouldEqual, 0)
			})

			Convey("Then the games invariant holds", func() {
				So(rec.OverallGames, ShouldEqual, rec.EasyGames+rec.MediumGames+rec.HardGames)
			})
		})

		Convey("When a record has a null overall average", func() {
			rec.OverallAvg = nil
			rec.OverallGames = 0
			rec.EasyGames = 0
			s, _ := stats.Parse("alice", 4.0, "hard")
			patch := stats.Next(rec, s)

			Convey("Then the null reads as zero", func() {
				So(patch.Overall.Avg, ShouldEqual, 2.0)
				So(patch.Overall.Games, ShouldEqual, 1)
			})
		})
	})
}

func TestNextMatchesFormula(t *testing.T) {
	Convey("Given an arbitrary sequence of submissions", t, func() {
		seq := []struct {
			time  float64
			level model.Level
		}{
			{3.2, model.LevelHard}, {7.9, model.LevelEasy}, {1.1, model.LevelMedium},
			{5.5, model.LevelEasy}, {9.0, model.LevelHard}, {2.4, model.LevelMedium},
		}

		var rec model.PlayerRecord
		var sumAdjusted float64
		sumRaw := map[model.Level]float64{}
		count := map[model.Level]int{}

		for i, step := range seq {
			s := stats.Submission{Name: "Zed", Time: step.time, Level: step.level}
			if i == 0 {
				rec = stats.NewRecord(s)
			} else {
				prevGames := rec.OverallGames
				patch := stats.Next(rec, s)
				So(patch.Overall.Games, ShouldEqual, prevGames+1)
				patch.ApplyTo(&rec)
			}
			sumAdjusted += s.Adjusted()
			sumRaw[step.level] += step.time
			count[step.level]++
		}

		Convey("Then every average equals the arithmetic mean", func() {
			So(rec.OverallGames, ShouldEqual, len(seq))
			So(*rec.OverallAvg, ShouldAlmostEqual, sumAdjusted/float64(len(seq)), tolerance)
			for _, l := range model.Levels {
				st := rec.Stats(l)
				So(st.Games, ShouldEqual, count[l])
				So(st.Avg, ShouldAlmostEqual, sumRaw[l]/float64(count[l]), tolerance)
			}
		})
	})
}

func TestFinite(t *testing.T) {
	Convey("Given a record built from a huge but finite time", t, func() {
		s := stats.Submission{Name: "Max", Time: 1e308, Level: model.LevelMedium}
		rec := stats.NewRecord(s)
		So(stats.Finite(rec), ShouldBeTrue)

		Convey("When a second equal game is folded in", func() {
			patch := stats.Next(rec, s)

			Convey("Then the running mean overflows and is reported", func() {
				So(stats.FinitePatch(patch), ShouldBeFalse)
			})
		})

		Convey("When a level average is not a number", func() {
			rec.HardAvg, rec.HardGames = math.NaN(), 1
			So(stats.Finite(rec), ShouldBeFalse)
		})

		Convey("When the overall average is null", func() {
			rec.OverallAvg = nil
			So(stats.Finite(rec), ShouldBeTrue)
		})
	})
}
