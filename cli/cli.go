package cli

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d1childress/neoTUI/api"
	"github.com/d1childress/neoTUI/batch"
	"github.com/d1childress/neoTUI/config"
	"github.com/d1childress/neoTUI/diag"
	"github.com/d1childress/neoTUI/export"
	"github.com/d1childress/neoTUI/history"
	"github.com/d1childress/neoTUI/logging"
	"github.com/d1childress/neoTUI/ports"
	"github.com/d1childress/neoTUI/scanner"
)

// Run is the main entry point for the CLI application.
// It dispatches to the named subcommand and returns a process exit code.
func Run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "scan":
		return runScan(ctx, cfg, rest)
	case "ping":
		return runPing(ctx, cfg, rest)
	case "dns":
		return runDNS(ctx, rest)
	case "http":
		return runHTTP(ctx, cfg, rest)
	case "trace":
		return runTrace(ctx, rest)
	case "batch":
		return runBatch(ctx, cfg, rest)
	case "history":
		return runHistory(ctx, cfg, rest)
	case "serve":
		return runServe(ctx, cfg)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Println("Usage: neotui <command> [flags] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  scan     scan TCP ports on a host           neotui scan [-timeout 300ms] [-workers 100] [-json file] host ports")
	fmt.Println("  ping     measure ICMP echo latency          neotui ping host")
	fmt.Println("  dns      resolve a hostname                  neotui dns host")
	fmt.Println("  http     probe an HTTP endpoint              neotui http url")
	fmt.Println("  trace    trace the route to a host           neotui trace host")
	fmt.Println("  batch    run a diagnostic over many targets  neotui batch -op ping host1 host2...")
	fmt.Println("  history  list recent scans (needs Redis)     neotui history [-n 10]")
	fmt.Println("  serve    run the REST API server             neotui serve")
	fmt.Println()
	fmt.Println("Example: neotui scan -json report.json scanme.nmap.org 1-1024")
	fmt.Println("Example: neotui batch -op dns -limit 8 example.com example.org")
}

func runScan(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	timeout := fs.Duration("timeout", cfg.ScanTimeout, "per-port connect timeout")
	workers := fs.Int("workers", cfg.ScanWorkers, "number of concurrent probes")
	jsonPath := fs.String("json", "", "write a JSON report to this file")
	csvPath := fs.String("csv", "", "write a CSV report to this file")
	htmlPath := fs.String("html", "", "write an HTML report to this file")
	xmlPath := fs.String("xml", "", "write an XML report to this file")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: neotui scan [flags] host ports")
		fmt.Fprintln(os.Stderr, "Example: neotui scan 127.0.0.1 22,80,443")
		return 2
	}
	host, spec := fs.Arg(0), fs.Arg(1)

	rng, err := ports.Parse(spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	started := time.Now()
	outcomes := scanner.Scan(ctx, host, rng, scanner.Options{
		Workers: *workers,
		Timeout: *timeout,
		Progress: func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rscanned %d/%d ports", completed, total)
		},
	})

	coll := scanner.NewCollector(len(rng))
	for outcome := range outcomes {
		coll.Add(outcome)
	}
	fmt.Fprintln(os.Stderr)
	report := coll.Report()
	elapsed := time.Since(started).Round(time.Millisecond)

	if !report.Complete() {
		fmt.Fprintln(os.Stderr, "scan interrupted, partial results follow")
	}
	printReport(host, report, elapsed)

	doc := &export.Document{
		Host:      host,
		PortSpec:  spec,
		Timestamp: started.UTC(),
		Duration:  elapsed.String(),
		Report:    report,
	}
	exports := map[export.Format]string{
		export.FormatJSON: *jsonPath,
		export.FormatCSV:  *csvPath,
		export.FormatHTML: *htmlPath,
		export.FormatXML:  *xmlPath,
	}
	code := 0
	for format, path := range exports {
		if path == "" {
			continue
		}
		if err := export.Save(doc, format, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write %s report: %v\n", format, err)
			code = 1
		}
	}

	if report.Complete() && cfg.RedisAddr != "" {
		recordHistory(ctx, cfg, host, spec, started, elapsed, report)
	}
	return code
}

func printReport(host string, report *scanner.Report, elapsed time.Duration) {
	fmt.Printf("Scan of %s: %d ports in %s\n", host, report.TotalRequested, elapsed)
	if len(report.Open) == 0 {
		fmt.Printf("No open ports (%d closed, %d errors)\n", report.ClosedCount, report.ErrorCount)
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tSTATE\tSERVICE")
	for _, outcome := range report.Open {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", outcome.Port, outcome.State, outcome.Service)
	}
	tw.Flush()
	fmt.Printf("%d open, %d closed, %d errors\n", len(report.Open), report.ClosedCount, report.ErrorCount)
}

// recordHistory saves the scan to Redis. Failures are logged, never fatal;
// a missing Redis must not break a local scan.
func recordHistory(ctx context.Context, cfg *config.Config, host, spec string, started time.Time, elapsed time.Duration, report *scanner.Report) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer client.Close()

	store := history.NewRedisStore(client)
	entry := &history.Entry{
		ID:        newID(),
		Host:      host,
		PortSpec:  spec,
		CreatedAt: started.UTC(),
		Duration:  elapsed.String(),
		Report:    report,
	}
	saveCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := store.SaveScan(saveCtx, entry); err != nil {
		logging.Logger().Warn("history record failed", "error", err)
	}
}

func runPing(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	timeout := fs.Duration("timeout", cfg.DiagTimeout, "echo reply timeout")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: neotui ping [-timeout 2s] host")
		return 2
	}

	result, err := diag.Ping(ctx, fs.Arg(0), *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("%s (%s): %s\n", result.Host, result.Addr, result.RTT.Round(time.Microsecond))
	return 0
}

func runDNS(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("dns", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: neotui dns host")
		return 2
	}

	addrs, err := diag.Resolve(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for _, addr := range addrs {
		fmt.Println(addr)
	}
	return 0
}

func runHTTP(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("http", flag.ExitOnError)
	timeout := fs.Duration("timeout", cfg.DiagTimeout, "request timeout")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: neotui http [-timeout 2s] url")
		return 2
	}

	result, err := diag.HTTPProbe(ctx, fs.Arg(0), *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("%s: %s in %s\n", result.URL, result.Status, result.Latency.Round(time.Millisecond))
	return 0
}

func runTrace(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: neotui trace host")
		return 2
	}

	output, err := diag.Traceroute(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Print(output)
	return 0
}

func runBatch(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	op := fs.String("op", "ping", "diagnostic to run per target: ping, dns or http")
	limit := fs.Int("limit", 8, "maximum concurrent targets")
	timeout := fs.Duration("timeout", cfg.DiagTimeout, "per-target timeout")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: neotui batch [-op ping|dns|http] [-limit 8] target1 target2...")
		return 2
	}

	var task batch.Task
	switch *op {
	case "ping":
		task = func(ctx context.Context, target string) (string, error) {
			result, err := diag.Ping(ctx, target, *timeout)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s %s", result.Addr, result.RTT.Round(time.Microsecond)), nil
		}
	case "dns":
		task = func(ctx context.Context, target string) (string, error) {
			addrs, err := diag.Resolve(ctx, target)
			if err != nil {
				return "", err
			}
			return fmt.Sprint(addrs), nil
		}
	case "http":
		task = func(ctx context.Context, target string) (string, error) {
			result, err := diag.HTTPProbe(ctx, target, *timeout)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s in %s", result.Status, result.Latency.Round(time.Millisecond)), nil
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown batch op %q\n", *op)
		return 2
	}

	results, err := batch.Run(ctx, fs.Args(), *limit, task)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	code := 0
	for _, result := range results {
		if result.Err != "" {
			fmt.Printf("%s: ERROR %v\n", result.Target, result.Err)
			code = 1
			continue
		}
		fmt.Printf("%s: %s\n", result.Target, result.Output)
	}
	return code
}

func runHistory(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	n := fs.Int("n", 10, "number of recent scans to show")
	jsonOutput := fs.Bool("json", false, "output entries as JSON")
	fs.Parse(args)

	if cfg.RedisAddr == "" {
		fmt.Fprintln(os.Stderr, "Error: history requires NEOTUI_REDIS_ADDR to be set")
		return 1
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer client.Close()

	entries, err := history.NewRedisStore(client).RecentScans(ctx, *n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOutput {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tHOST\tPORTS\tOPEN\tDURATION")
	for _, entry := range entries {
		open := 0
		if entry.Report != nil {
			open = len(entry.Report.Open)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			entry.Host, entry.PortSpec, open, entry.Duration)
	}
	tw.Flush()
	return 0
}

func runServe(ctx context.Context, cfg *config.Config) int {
	if err := api.Run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newID returns a random version 4 UUID.
func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
