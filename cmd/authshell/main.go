package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-shell/access"
	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/credentials"
	"github.com/jrsteele09/go-auth-shell/internal/config"
	"github.com/jrsteele09/go-auth-shell/internal/logging"
	"github.com/jrsteele09/go-auth-shell/screens"
	"github.com/jrsteele09/go-auth-shell/sessions"
	"github.com/jrsteele09/go-auth-shell/shell"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file to load")
	start := flag.String("path", access.RouteHome, "page to open on start")
	noColour := flag.Bool("no-colour", false, "disable ANSI colours")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Error loading %s: %s\n", *envFile, err)
	}
	screens.Colour = !*noColour

	if err := run(*start); err != nil {
		log.Fatalf("Error running shell: %s\n", err)
	}
}

func run(start string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := config.New()
	displayAppname(c.GetAppName())
	logger := logging.New(c, os.Stderr)

	store, closeStore := credentials.Open(c, logger)
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("closing credential store")
		}
	}()

	if err := store.Check(); err != nil {
		logger.Warn().Err(err).Msg("sign-ins will not survive a restart")
	}

	client := apiclient.New(c.GetAPIBaseURL(), store, apiclient.WithLogger(logger))
	controller := sessions.New(client, store, sessions.WithLogger(logger))
	controller.Bootstrap(ctx)

	app := shell.New(client, store, controller, os.Stdout, shell.WithLogger(logger))
	if err := app.Navigate(ctx, start); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, os.Stdin)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Println()
		return nil
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
