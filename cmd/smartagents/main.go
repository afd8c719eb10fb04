// Command smartagents runs a tool-using agent, a ReAct agent or a tool chain
// from the command line.
//
// Usage:
//
//	smartagents -agent tool -q "What is the weather in Paris?"
//	smartagents -agent react            # interactive, one question per line
//	smartagents -chains chains.yaml -chain research -q "Go generics"
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edgetalker/smart-agents/config"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/metrics"
)

type flags struct {
	envFile   string
	agentKind string
	question  string
	chainFile string
	chainName string
}

func parseFlags(args []string) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("smartagents", flag.ContinueOnError)
	fs.StringVar(&f.envFile, "env", "", "path to a .env file (default ./.env)")
	fs.StringVar(&f.agentKind, "agent", "tool", "agent kind: tool or react")
	fs.StringVar(&f.question, "q", "", "question to answer; reads stdin line by line when empty")
	fs.StringVar(&f.chainFile, "chains", "", "YAML file with chain definitions")
	fs.StringVar(&f.chainName, "chain", "", "run the named chain instead of an agent")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	if f.chainName != "" && f.chainFile == "" {
		return flags{}, errors.New("-chain requires -chains")
	}

	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "smartagents: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	var envFiles []string
	if f.envFile != "" {
		envFiles = append(envFiles, f.envFile)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, syncLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer syncLog()

	if cfg.Metrics.Addr != "" {
		srv := startMetrics(cfg.Metrics.Addr, logger)
		defer shutdown(srv)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if f.chainFile != "" {
		if err := a.chains.LoadFile(f.chainFile); err != nil {
			return err
		}

		logger.Info("chains.loaded", "chains", strings.Join(a.chains.List(), ","))
	}

	answer := func(q string) (string, error) {
		if f.chainName != "" {
			return a.chains.Execute(ctx, f.chainName, q, nil)
		}

		ag, err := a.newAgent(f.agentKind)
		if err != nil {
			return "", err
		}

		return ag.Run(ctx, q)
	}

	if f.question != "" {
		resp, err := answer(f.question)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, resp)

		return nil
	}

	return repl(ctx, a, f, in, out, answer)
}

// repl answers one question per input line. Agent kinds keep their history
// for the whole session.
func repl(ctx context.Context, a *app, f flags, in io.Reader, out io.Writer, once func(string) (string, error)) error {
	ask := once

	if f.chainName == "" {
		ag, err := a.newAgent(f.agentKind)
		if err != nil {
			return err
		}

		ask = func(q string) (string, error) { return ag.Run(ctx, q) }
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}

		if q == "exit" || q == "quit" {
			return nil
		}

		resp, err := ask(q)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			fmt.Fprintf(out, "error: %v\n", err)

			continue
		}

		fmt.Fprintln(out, resp)
	}
}

func startMetrics(addr string, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics.server.failed", "addr", addr, "error", err)
		}
	}()

	logger.Info("metrics.server.started", "addr", addr)

	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
}
