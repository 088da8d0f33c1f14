package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vitals.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{"VITALS_CONFIG", "VITALS_ADDR", "VITALS_READINESS__LOGISTIC_K", "VITALS_RATE_LIMIT__REQUESTS"} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then defaults are kept and valid", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Database.Driver, convey.ShouldEqual, "pgx")
				convey.So(cfg.Readiness.HRVWindowDays, convey.ShouldEqual, 30)
				convey.So(cfg.Readiness.LogisticK, convey.ShouldEqual, 0.87)
				convey.So(cfg.Redis.CacheTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.Trends.DefaultWeeks, convey.ShouldEqual, 4)
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading a partial YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
database:
  driver: sqlite
  dsn: file:vitals.db
readiness:
  hrv_window_days: 60
redis:
  cache_ttl: 5m
`)
			cfg, err := config.Load(path)

			convey.Convey("Then file values merge with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Database.Driver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Database.DSN, convey.ShouldEqual, "file:vitals.db")
				convey.So(cfg.Database.MaxOpenConns, convey.ShouldEqual, 25)
				convey.So(cfg.Readiness.HRVWindowDays, convey.ShouldEqual, 60)
				convey.So(cfg.Readiness.TrainingLoadDays, convey.ShouldEqual, 7)
				convey.So(cfg.Redis.CacheTTL, convey.ShouldEqual, 5*time.Minute)
			})
		})

		convey.Convey("When env vars and a file are both set", func() {
			path := writeConfigFile(t, `
addr: ":9090"
trends:
  default_weeks: 6
`)
			t.Setenv("VITALS_CONFIG", path)
			t.Setenv("VITALS_ADDR", ":7070")
			t.Setenv("VITALS_READINESS__LOGISTIC_K", "1.2")
			t.Setenv("VITALS_RATE_LIMIT__REQUESTS", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load("")

			convey.Convey("Then env overrides the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Trends.DefaultWeeks, convey.ShouldEqual, 6)
				convey.So(cfg.Readiness.LogisticK, convey.ShouldEqual, 1.2)
				convey.So(cfg.RateLimit.Requests, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the file does not exist", func() {
			cfg, err := config.Load("/non/existent/vitals.yaml")

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML is malformed", func() {
			path := writeConfigFile(t, `invalid: yaml: content: [`)
			cfg, err := config.Load(path)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
			msg    string
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr"},
			{"unknown driver", func(c *config.Config) { c.Database.Driver = "mysql" }, "database.driver"},
			{"empty dsn", func(c *config.Config) { c.Database.DSN = "" }, "database.dsn"},
			{"zero hrv window", func(c *config.Config) { c.Readiness.HRVWindowDays = 0 }, "hrv_window_days"},
			{"negative load window", func(c *config.Config) { c.Readiness.TrainingLoadDays = -1 }, "training_load_days"},
			{"zero logistic k", func(c *config.Config) { c.Readiness.LogisticK = 0 }, "logistic_k"},
			{"unknown distance unit", func(c *config.Config) { c.Workouts.DefaultDistanceUnit = "furlong" }, "default_distance_unit"},
			{"default weeks above max", func(c *config.Config) { c.Trends.DefaultWeeks = 200 }, "default_weeks"},
			{"zero queue", func(c *config.Config) { c.Worker.QueueSize = 0 }, "queue_size"},
			{"negative drain timeout", func(c *config.Config) { c.Worker.DrainTimeout = -time.Second }, "drain_timeout"},
			{"zero ttl with redis", func(c *config.Config) {
				c.Redis.Enabled = true
				c.Redis.CacheTTL = 0
			}, "cache_ttl"},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.msg)
			})
		}

		convey.Convey("When the distance unit is upper case", func() {
			cfg := config.New()
			cfg.Workouts.DefaultDistanceUnit = "MI"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
