package main

import (
	"context"
	"fmt"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"

	"github.com/touslux/catalog-api/config"
	"github.com/touslux/catalog-api/server"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("catalog-api"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))

	app := server.New(cfg, lgr)

	if err := app.WithPersistence(ctx); err != nil {
		panic(err)
	}

	if err := app.WithAuth(ctx); err != nil {
		panic(err)
	}

	if err := app.WithHTTPServer(ctx); err != nil {
		panic(err)
	}

	app.Run()
}
