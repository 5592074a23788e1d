package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFormat(FormatJSON)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging a message with fields", func() {
			Get().Info(ctx, "submission stored", String("name", "Bob"), Int("games", 2), Error(errors.New("boom")))

			Convey("Then the record carries the fields and the caller", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "submission stored")
				So(rec["name"], ShouldEqual, "Bob")
				So(rec["games"], ShouldEqual, 2.0)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(ctx, "hidden")

			Convey("Then info records are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
				So(Level(), ShouldEqual, slog.LevelWarn)
			})
		})

		Convey("When using With and Named", func() {
			Get().With(String("request_id", "abc")).Named("api").Info(ctx, "hello", String("k", "v"))

			Convey("Then bound fields appear", func() {
				So(buf.String(), ShouldContainSubstring, `"request_id":"abc"`)
				So(buf.String(), ShouldContainSubstring, `"api":{`)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("DEBUG"), ShouldBeNil)
		So(Level(), ShouldEqual, slog.LevelDebug)
		So(SetLevelString("warning"), ShouldBeNil)
		So(Level(), ShouldEqual, slog.LevelWarn)
		So(SetLevelString(""), ShouldBeNil)
		So(Level(), ShouldEqual, slog.LevelInfo)
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop logger accepts calls without output", t, func() {
		l := Nop()
		So(func() { l.Error(context.Background(), "x", String("a", "b")) }, ShouldNotPanic)
	})
}
