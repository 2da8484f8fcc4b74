package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-shell/internal/config"
	"github.com/jrsteele09/go-auth-shell/internal/logging"
	"github.com/jrsteele09/go-auth-shell/internal/mockapi"
	fakeuserrepo "github.com/jrsteele09/go-auth-shell/users/repofake"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Error loading .env: %s\n", err)
	}
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running mock API: %s\n", err)
		} else {
			break
		}
	}
	log.Printf("Mock API stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName() + " API")
	logger := logging.New(c, os.Stderr)

	api, err := mockapi.New(c, fakeuserrepo.NewFakeAccountRepo(), mockapi.WithLogger(logger))
	if err != nil {
		return err
	}
	if c.GetSeedUsers() {
		for _, demo := range mockapi.DemoAccounts {
			logger.Info().Str("email", demo.Email).Str("role", demo.Role.String()).Msg("demo account available")
		}
	}

	server := &http.Server{Addr: c.GetPort(), Handler: api}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(server)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Printf("Mock API listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
