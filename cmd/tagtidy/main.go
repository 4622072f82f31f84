// Package main provides the CLI entry point for Tagtidy.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"tagtidy/internal/audit"
	"tagtidy/internal/config"
	"tagtidy/internal/discovery"
	"tagtidy/internal/orchestrator"
	"tagtidy/internal/output"
	"tagtidy/internal/watcher"
)

const appVersion = "1.0.0"

const usage = `Usage: tagtidy <command> [options]

Commands:
  run       Scan source directories and organize audio files
  watch     Watch source directories and organize files as they arrive
  status    Show pending files and where they would go
  discover  Propose artist rules from an organized library
  validate  Check the configuration for problems
  log       Show audit log history

Run 'tagtidy <command> -h' for command options.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "run":
		code = cmdRun(os.Args[2:])
	case "watch":
		code = cmdWatch(os.Args[2:])
	case "status":
		code = cmdStatus(os.Args[2:])
	case "discover":
		code = cmdDiscover(os.Args[2:])
	case "validate":
		code = cmdValidate(os.Args[2:])
	case "log":
		code = cmdLog(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s\n", os.Args[1], usage)
		code = 1
	}
	os.Exit(code)
}

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Configuration, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAuditWriter opens the audit log when auditing is enabled. A nil writer
// disables auditing in the orchestrator.
func newAuditWriter(cfg *config.Configuration) (*audit.AuditWriter, error) {
	if cfg.Audit == nil || !cfg.Audit.Enabled {
		return nil, nil
	}
	return audit.NewAuditWriter(*cfg.Audit)
}

// watchConfigFrom converts the configuration's watch settings, falling back
// to defaults for unset fields.
func watchConfigFrom(cfg *config.Configuration) *watcher.WatchConfig {
	wc := watcher.DefaultWatchConfig()
	if cfg.Watch == nil {
		return wc
	}
	if cfg.Watch.DebounceSeconds > 0 {
		wc.DebounceSeconds = cfg.Watch.DebounceSeconds
	}
	if cfg.Watch.StableThresholdMs > 0 {
		wc.StableThresholdMs = cfg.Watch.StableThresholdMs
	}
	if cfg.Watch.StabilityTimeoutSecs > 0 {
		wc.StabilityTimeoutSecs = cfg.Watch.StabilityTimeoutSecs
	}
	if len(cfg.Watch.IgnorePatterns) > 0 {
		wc.IgnorePatterns = cfg.Watch.IgnorePatterns
	}
	return wc
}

func printRunSummary(out *output.Output, summary *orchestrator.RunSummary, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}
	out.Info("%sMoved: %d, For review: %d, Skipped: %d, Errors: %d (%s)",
		prefix, summary.Moved, summary.ForReview, summary.Skipped, summary.Errors,
		summary.Duration.Round(time.Millisecond))

	if len(summary.ByArtist) > 0 {
		artists := make([]string, 0, len(summary.ByArtist))
		for artist := range summary.ByArtist {
			artists = append(artists, artist)
		}
		sort.Strings(artists)
		for _, artist := range artists {
			out.Info("  %s: %d", artist, summary.ByArtist[artist])
		}
	}
}

func cmdRun(args []string) int {
	flags := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := flags.String("config", "tagtidy.json", "path to the configuration file")
	dryRun := flags.Bool("dry-run", false, "report what would happen without moving files")
	verbose := flags.Bool("verbose", false, "print each file operation")
	flags.Parse(args)

	outConfig := output.DefaultConfig()
	outConfig.Verbose = *verbose
	out := output.New(outConfig)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	writer, err := newAuditWriter(cfg)
	if err != nil {
		out.Error("Error: cannot open audit log: %v", err)
		return 1
	}
	if writer != nil {
		defer writer.Close()
	}

	orch := orchestrator.NewOrchestrator(cfg, out, writer)

	start := time.Now()
	result, err := orch.Run(orchestrator.RunOptions{
		DryRun:     *dryRun,
		AppVersion: appVersion,
	})
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	for _, scanErr := range result.ScanErrors {
		out.Error("Warning: %v", scanErr)
	}
	for _, op := range result.Errors {
		out.Error("Error processing %s: %v", op.SourcePath, op.Err)
	}

	printRunSummary(out, orchestrator.GenerateSummary(result, time.Since(start), *verbose), *dryRun)

	if result.HasErrors() {
		return 1
	}
	return 0
}

func cmdWatch(args []string) int {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := flags.String("config", "tagtidy.json", "path to the configuration file")
	verbose := flags.Bool("verbose", false, "print each file operation")
	flags.Parse(args)

	outConfig := output.DefaultConfig()
	outConfig.Verbose = *verbose
	out := output.New(outConfig)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	writer, err := newAuditWriter(cfg)
	if err != nil {
		out.Error("Error: cannot open audit log: %v", err)
		return 1
	}
	if writer != nil {
		defer writer.Close()
	}

	orch := orchestrator.NewOrchestrator(cfg, out, writer)

	w := watcher.New(watchConfigFrom(cfg), orch.HandleFile)
	w.SetErrorHandler(func(err error) {
		out.Error("Watch error: %v", err)
	})

	if err := w.Start(cfg.SourceDirectories); err != nil {
		out.Error("Error: cannot start watching: %v", err)
		return 1
	}

	out.Info("Watching %d directories. Press Ctrl+C to stop.", len(cfg.SourceDirectories))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	summary := w.Stop()
	out.Info("Organized: %d, For review: %d, Skipped: %d (%s)",
		summary.FilesOrganized, summary.FilesReviewed, summary.FilesSkipped,
		summary.Duration.Round(time.Second))
	return 0
}

func cmdStatus(args []string) int {
	flags := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := flags.String("config", "tagtidy.json", "path to the configuration file")
	flags.Parse(args)

	out := output.New(output.DefaultConfig())

	cfg, err := loadConfig(*configPath)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	orch := orchestrator.NewOrchestrator(cfg, out, nil)
	status, err := orch.Status()
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	sources := make([]string, 0, len(status.BySource))
	for source := range status.BySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		srcStatus := status.BySource[source]
		out.Info("%s: %d pending", source, srcStatus.Total)

		destinations := make([]string, 0, len(srcStatus.ByDestination))
		for dest := range srcStatus.ByDestination {
			destinations = append(destinations, dest)
		}
		sort.Strings(destinations)

		for _, dest := range destinations {
			files := srcStatus.ByDestination[dest]
			out.Info("  -> %s (%d)", dest, len(files))
			for _, file := range files {
				out.Info("       %s", file)
			}
		}
	}

	out.Info("Total pending: %d", status.GrandTotal)
	return 0
}

func cmdDiscover(args []string) int {
	flags := flag.NewFlagSet("discover", flag.ExitOnError)
	configPath := flags.String("config", "tagtidy.json", "path to the configuration file")
	acceptAll := flags.Bool("yes", false, "accept all discovered rules without prompting")
	flags.Parse(args)

	out := output.New(output.DefaultConfig())

	if flags.NArg() != 1 {
		out.Error("Usage: tagtidy discover [options] <library-directory>")
		return 1
	}
	libraryDir := flags.Arg(0)

	// The config may not exist yet when seeding a fresh setup.
	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	result, err := discovery.Discover(libraryDir, cfg)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	out.Info("Scanned %d directories, analyzed %d files.", result.ScannedDirs, result.FilesAnalyzed)
	for _, rule := range result.SkippedRules {
		out.Info("Already configured: %s", rule.Artist)
	}

	if len(result.NewRules) == 0 {
		out.Info("No new artists discovered.")
		return 0
	}

	accepted := selectRules(result.NewRules, *acceptAll, out)
	if len(accepted) == 0 {
		out.Info("No rules accepted.")
		return 0
	}

	for _, rule := range accepted {
		cfg.AddArtistRule(config.ArtistRule{
			Artist:          rule.Artist,
			TargetDirectory: rule.TargetDirectory,
		})
	}
	if !cfg.HasSourceDirectory(libraryDir) && len(cfg.SourceDirectories) == 0 {
		out.Info("Note: no source directories configured yet; edit %s to add them.", *configPath)
	}

	if err := config.Save(cfg, *configPath); err != nil {
		out.Error("Error: cannot save configuration: %v", err)
		return 1
	}

	out.Info("Added %d artist rules to %s.", len(accepted), *configPath)
	return 0
}

// selectRules filters discovered rules through interactive prompts, unless
// acceptAll is set or stdin is not a terminal.
func selectRules(rules []discovery.DiscoveredRule, acceptAll bool, out *output.Output) []discovery.DiscoveredRule {
	if acceptAll || !discovery.IsInteractive() {
		if !acceptAll {
			out.Info("Non-interactive session, accepting all %d discovered rules.", len(rules))
		}
		return rules
	}

	prompter := discovery.NewInteractivePrompter(os.Stdin, os.Stdout)
	var accepted []discovery.DiscoveredRule

	for i, rule := range rules {
		result, err := prompter.PromptForRule(rule)
		if err != nil {
			out.Error("Error reading input: %v", err)
			return accepted
		}
		switch result {
		case discovery.PromptAccept:
			accepted = append(accepted, rule)
		case discovery.PromptReject:
			// next rule
		case discovery.PromptAcceptAll:
			return append(accepted, rules[i:]...)
		case discovery.PromptRejectAll, discovery.PromptQuit:
			return accepted
		}
	}
	return accepted
}

func cmdValidate(args []string) int {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := flags.String("config", "tagtidy.json", "path to the configuration file")
	flags.Parse(args)

	out := output.New(output.DefaultConfig())

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	result := config.ValidateConfig(cfg)
	for _, issue := range result.Errors {
		out.Error("error: %s: %s", issue.Field, issue.Message)
	}
	for _, issue := range result.Warnings {
		out.Info("warning: %s: %s", issue.Field, issue.Message)
	}

	if !result.Valid {
		out.Info("Configuration has %d errors.", len(result.Errors))
		return 1
	}
	out.Info("Configuration OK.")
	return 0
}

func cmdLog(args []string) int {
	flags := flag.NewFlagSet("log", flag.ExitOnError)
	configPath := flags.String("config", "tagtidy.json", "path to the configuration file")
	runID := flags.String("run", "", "show all events for one run ID")
	flags.Parse(args)

	out := output.New(output.DefaultConfig())

	cfg, err := loadConfig(*configPath)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}
	if cfg.Audit == nil || !cfg.Audit.Enabled {
		out.Error("Error: audit logging is disabled in the configuration")
		return 1
	}

	reader := audit.NewAuditReader(cfg.Audit.LogDirectory)

	if *runID != "" {
		return printRunEvents(reader, audit.RunID(*runID), out)
	}

	runs, err := reader.ListRuns()
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}
	if len(runs) == 0 {
		out.Info("No runs recorded yet.")
		return 0
	}

	for _, run := range runs {
		out.Info("%s  %s  %s  moved=%d review=%d skipped=%d errors=%d",
			run.StartTime.Format(time.RFC3339), run.RunID, run.Status,
			run.Summary.Renamed, run.Summary.RoutedReview, run.Summary.Skipped,
			run.Summary.Errors)
	}
	return 0
}

func printRunEvents(reader *audit.AuditReader, runID audit.RunID, out *output.Output) int {
	events, err := reader.GetRun(runID)
	if err != nil {
		out.Error("Error: %v", err)
		return 1
	}

	for _, event := range events {
		line := fmt.Sprintf("%s  %-16s", event.Timestamp.Format(time.RFC3339), event.EventType)
		if event.SourcePath != "" {
			line += "  " + event.SourcePath
		}
		if event.DestinationPath != "" {
			line += " -> " + event.DestinationPath
		}
		if event.ReasonCode != "" {
			line += fmt.Sprintf("  (%s)", event.ReasonCode)
		}
		out.Info("%s", line)
	}
	return 0
}
