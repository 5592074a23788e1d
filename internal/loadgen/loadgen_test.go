package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/scoreboard/internal/adapters/http/api"
	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/leaderboard"
	"github.com/okian/scoreboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newScoreboard() (*httptest.Server, func()) {
	svc := service.New()
	So(svc.Start(context.Background()), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running scoreboard", t, func() {
		srv, stop := newScoreboard()
		defer stop()

		Convey("When a load run submits concurrently", func() {
			st, err := Run(context.Background(), &Config{
				BaseURL:     srv.URL,
				Players:     12,
				Submissions: 300,
				Invalid:     15,
				Workers:     8,
				Seed:        42,
			})

			Convey("Then every aggregate and the ordering verify", func() {
				So(err, ShouldBeNil)
				So(st.Mismatches, ShouldBeEmpty)
				So(st.Submitted, ShouldEqual, 315)
				So(st.Accepted, ShouldEqual, 300)
				So(st.Rejected, ShouldEqual, 15)
				So(st.Failed, ShouldEqual, 0)
				So(st.Entries, ShouldEqual, st.Players)
			})
		})
	})

	Convey("Given no service at the URL", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Submissions: 1})
		So(err, ShouldNotBeNil)
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := (&Config{Players: 5, Submissions: 100, Invalid: 3, Seed: 7}).withDefaults()
		valid, invalid, expected := generate(cfg)

		Convey("Then the expected games add up to the submissions", func() {
			So(valid, ShouldHaveLength, 100)
			So(invalid, ShouldHaveLength, 3)
			total := 0
			for _, exp := range expected {
				total += exp.Overall.Games
				levels := 0
				for _, ls := range exp.Levels {
					levels += ls.Games
				}
				So(levels, ShouldEqual, exp.Overall.Games)
			}
			So(total, ShouldEqual, 100)
			So(len(expected), ShouldBeLessThanOrEqualTo, 5)
		})

		Convey("Then times stay in range and levels are valid", func() {
			for _, s := range valid {
				So(s.Time, ShouldBeBetweenOrEqual, minTime, maxTime)
				So(model.Level(s.Level).Valid(), ShouldBeTrue)
			}
			for _, s := range invalid {
				So(model.Level(s.Level).Valid(), ShouldBeFalse)
			}
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given expected aggregates", t, func() {
		expected := map[string]*Expected{
			"Alice": {
				Name:    "Alice",
				Overall: model.LevelStats{Avg: 17.5, Games: 2},
				Levels: map[model.Level]model.LevelStats{
					model.LevelEasy:   {Avg: 10, Games: 1},
					model.LevelMedium: {Avg: 20, Games: 1},
				},
			},
		}
		alice := model.PlayerRecord{
			Name: "Alice", OverallAvg: model.Float(17.5), OverallGames: 2,
			EasyAvg: 10, EasyGames: 1, MediumAvg: 20, MediumGames: 1,
		}
		bob := model.PlayerRecord{Name: "Bob", OverallAvg: model.Float(30), OverallGames: 1, MediumAvg: 30, MediumGames: 1}
		ghost := model.PlayerRecord{Name: "Ghost"}

		Convey("When the board matches", func() {
			So(verify([]model.PlayerRecord{alice, bob, ghost}, expected), ShouldBeEmpty)
		})

		Convey("When the board is out of order", func() {
			So(verify([]model.PlayerRecord{bob, alice}, expected), ShouldHaveLength, 1)
		})

		Convey("When the board was ordered by the leaderboard package", func() {
			board := leaderboard.Sort([]model.PlayerRecord{ghost, bob, alice})
			So(verify(board, expected), ShouldBeEmpty)
		})

		Convey("When a null average is not last", func() {
			So(verify([]model.PlayerRecord{ghost, alice}, expected), ShouldHaveLength, 1)
		})

		Convey("When an update was lost", func() {
			alice.OverallGames = 1
			alice.MediumGames = 0
			So(verify([]model.PlayerRecord{alice}, expected), ShouldNotBeEmpty)
		})

		Convey("When a player is missing", func() {
			So(verify([]model.PlayerRecord{bob}, expected), ShouldHaveLength, 1)
		})
	})
}

func TestShardOf(t *testing.T) {
	Convey("Given a player key", t, func() {
		Convey("Then it always maps to the same shard", func() {
			a := shardOf("Player-1234abcd", 8)
			So(shardOf("Player-1234abcd", 8), ShouldEqual, a)
			So(a, ShouldBeBetweenOrEqual, 0, 7)
		})
	})
}
