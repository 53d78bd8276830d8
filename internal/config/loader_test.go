package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/penumbrapenned/penned/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "penned.db")
				convey.So(cfg.Weeks, convey.ShouldResemble, []string{"week-1", "week-2", "week-3"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PENNED_ADDR", ":8080")
			_ = os.Setenv("PENNED_LOG_FORMAT", "json")
			_ = os.Setenv("PENNED_WEEKS", "week-1, week-2")
			_ = os.Setenv("PENNED_CMS__BASE_URL", "https://cms.example.com/api")
			_ = os.Setenv("PENNED_CMS__PAGE_LIMIT", "25")
			_ = os.Setenv("PENNED_SYNC__INTERVAL_S", "300")
			_ = os.Setenv("PENNED_SYNC__FAIL_OPEN", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Weeks, convey.ShouldResemble, []string{"week-1", "week-2"})
				convey.So(cfg.CMS.BaseURL, convey.ShouldEqual, "https://cms.example.com/api")
				convey.So(cfg.CMS.PageLimit, convey.ShouldEqual, 25)
				convey.So(cfg.SyncInterval(), convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.Sync.FailOpen, convey.ShouldBeTrue)
				convey.So(cfg.SyncEnabled(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
db_path: "/var/lib/penned/entries.db"
weeks: ["week-1", "week-2", "week-3", "week-4"]
themes:
  week-4:
    title: "Undertow"
    prompt: "Something pulls from below."
cms:
  base_url: "https://cms.example.com/api"
  token: "file-token"
sync:
  interval_s: 60
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PENNED_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			convey.Convey("Then it should load from YAML file", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/penned/entries.db")
				convey.So(len(cfg.Weeks), convey.ShouldEqual, 4)
				convey.So(cfg.Themes["week-4"].Title, convey.ShouldEqual, "Undertow")
				convey.So(cfg.CMS.Token, convey.ShouldEqual, "file-token")
				convey.So(cfg.CMS.PageLimit, convey.ShouldEqual, 100)
				convey.So(cfg.SyncInterval(), convey.ShouldEqual, time.Minute)
			})

			convey.Convey("Then env vars take precedence over the file", func() {
				_ = os.Setenv("PENNED_ADDR", ":7000")
				_ = os.Setenv("PENNED_CMS__TOKEN", "env-token")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.CMS.Token, convey.ShouldEqual, "env-token")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PENNED_CONFIG", "/nonexistent/penned.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the loaded values are invalid", func() {
			_ = os.Setenv("PENNED_WEEKS", "week-1,never")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"PENNED_CONFIG",
		"PENNED_ADDR",
		"PENNED_LOG_FORMAT",
		"PENNED_WEEKS",
		"PENNED_CMS__BASE_URL",
		"PENNED_CMS__PAGE_LIMIT",
		"PENNED_CMS__TOKEN",
		"PENNED_SYNC__INTERVAL_S",
		"PENNED_SYNC__FAIL_OPEN",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "penned-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}
