package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/goalwatch/internal/config"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestWatch(t *testing.T) {
	_ = logger.Init()
	t.Setenv(config.EnvConfigPath, "")

	convey.Convey("Given a watched config file", t, func() {
		path := writeConfig(t, "addr: \":9001\"\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		got := make(chan *config.Config, 4)
		done := make(chan error, 1)
		go func() { done <- config.Watch(ctx, path, func(c *config.Config) { got <- c }) }()
		time.Sleep(100 * time.Millisecond)

		convey.Convey("When the file is replaced by rename twice", func() {
			replace := func(content string) {
				tmp := filepath.Join(filepath.Dir(path), "goalwatch.yaml.tmp")
				convey.So(os.WriteFile(tmp, []byte(content), 0o600), convey.ShouldBeNil)
				convey.So(os.Rename(tmp, path), convey.ShouldBeNil)
			}

			convey.Convey("Then both saves are picked up", func() {
				replace("addr: \":9003\"\n")
				convey.So(waitAddr(got, ":9003"), convey.ShouldBeTrue)

				replace("addr: \":9004\"\n")
				convey.So(waitAddr(got, ":9004"), convey.ShouldBeTrue)

				cancel()
				convey.So(<-done, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file is rewritten with a broken value and then a valid one", func() {
			convey.So(os.WriteFile(path, []byte("log_level: loud\n"), 0o600), convey.ShouldBeNil)
			time.Sleep(100 * time.Millisecond)
			convey.So(os.WriteFile(path, []byte("addr: \":9002\"\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then only the valid config is delivered", func() {
				var last *config.Config
				timeout := time.After(3 * time.Second)
			loop:
				for {
					select {
					case c := <-got:
						last = c
						if c.Addr == ":9002" {
							break loop
						}
					case <-timeout:
						break loop
					}
				}
				convey.So(last, convey.ShouldNotBeNil)
				convey.So(last.Addr, convey.ShouldEqual, ":9002")
				convey.So(last.LogLevel, convey.ShouldEqual, "info")

				cancel()
				convey.So(<-done, convey.ShouldBeNil)
			})
		})
	})
}

func waitAddr(got <-chan *config.Config, addr string) bool {
	timeout := time.After(3 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Addr == addr {
				return true
			}
		case <-timeout:
			return false
		}
	}
}
