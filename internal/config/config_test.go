package config_test

import (
	"errors"
	"testing"

	"github.com/okian/scoreboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	convey.Convey("Given default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then defaults are set", func() {
			convey.So(cfg.Port, convey.ShouldEqual, 5000)
			convey.So(cfg.Host, convey.ShouldEqual, "0.0.0.0")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.StoreTable, convey.ShouldEqual, "scores")
			convey.So(cfg.AllowedOrigin, convey.ShouldEqual, "http://localhost:3000")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Addr(), convey.ShouldEqual, "0.0.0.0:5000")
		})

		convey.Convey("Then defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := config.New()

		convey.Convey("When the port is out of range", func() {
			cfg.Port = 70000
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "redis"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When supabase lacks a key", func() {
			cfg.StoreDriver = "supabase"
			cfg.StoreURL = "https://example.supabase.co"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

			cfg.StoreKey = "anon"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When mongo lacks a URI", func() {
			cfg.StoreDriver = "mongo"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
