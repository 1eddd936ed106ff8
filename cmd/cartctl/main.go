// Command cartctl drives a storefront cart from the terminal. The cart is
// kept in a local directory between runs; products and orders go through
// the storefront HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lateleria/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultServer  = "http://localhost:8080"
	defaultSession = "default"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cartctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		server   string
		dir      string
		session  string
		timeout  time.Duration
		logLevel string
	)
	fs.StringVar(&server, "server", envOr("CARTCTL_SERVER", defaultServer), "Storefront base URL")
	fs.StringVar(&dir, "dir", envOr("CARTCTL_DIR", defaultDir()), "Directory holding saved carts")
	fs.StringVar(&session, "session", defaultSession, "Cart name; each name is a separate cart")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "Catalog request timeout")
	fs.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return 2
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05",
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	a, err := newApp(appConfig{
		Server:  server,
		Dir:     dir,
		Session: session,
		Timeout: timeout,
	}, stdout, log)
	if err != nil {
		fmt.Fprintf(stderr, "cartctl: %v\n", err)
		return 1
	}

	if err := a.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		log.Debug("command failed", zap.String("command", fs.Arg(0)), zap.Error(err))
		fmt.Fprintf(stderr, "cartctl: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: cartctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <slug> <qty> [name=value ...]   Add units of a product")
	fmt.Fprintln(w, "  set <slug> <qty> [name=value ...]   Set a line's quantity (0 removes it)")
	fmt.Fprintln(w, "  remove <slug> [name=value ...]      Remove a line")
	fmt.Fprintln(w, "  show                                Print the cart and its totals")
	fmt.Fprintln(w, "  clear                               Empty the cart")
	fmt.Fprintln(w, "  checkout <shipping.json>            Place an order for the cart")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "cartctl")
	}
	return ".cartctl"
}
