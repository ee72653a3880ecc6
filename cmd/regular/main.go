// Command regular is the CLI front-end over the session driver: it
// locates the config/state roots via REGULAR_CONFIG_DIR/
// REGULAR_STATE_DIR (falling back to platform user-config/user-cache
// directories), then exposes list/run/status subcommands on top of
// job.LoadConfig, session.Run and statuslog.Load.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"oss.nandlabs.io/regular/cli"
	"oss.nandlabs.io/regular/config"
	"oss.nandlabs.io/regular/filelock"
	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/l3"
	"oss.nandlabs.io/regular/notify"
	"oss.nandlabs.io/regular/runner"
	"oss.nandlabs.io/regular/session"
	"oss.nandlabs.io/regular/statuslog"
)

var logger = l3.Get()

const version = "0.1.0"

func main() {
	app := cli.NewCLI()
	app.AddVersion(version)
	app.AddCommand(listCommand())
	app.AddCommand(runCommand())
	app.AddCommand(statusCommand())

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// outerEnvironment reads the process environment once, as the "outer
// environment" that env-file substitution and script execution consult
// (per the design note against hidden process-wide reads inside hot
// paths, this is read exactly once at startup, not rediscovered per
// job).
func outerEnvironment() map[string]string {
	m := make(map[string]string, len(os.Environ()))
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

// resolveRoots locates the config and state roots: REGULAR_CONFIG_DIR/
// REGULAR_STATE_DIR override the platform user-config/user-cache
// directory conventions, matching spec §6's environment-variable
// interface. Locating platform defaults is an out-of-scope external
// concern per spec §1; this thin wrapper uses the stdlib platform
// directory helpers rather than a third-party platform-directories
// package, since none appears anywhere in the retrieved pack.
func resolveRoots() (configRoot, stateRoot string, err error) {
	configRoot = config.GetEnvAsString(job.EnvVarConfigDir, "")
	if configRoot == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", "", fmt.Errorf("resolve default config dir: %w", err)
		}
		configRoot = filepath.Join(base, job.AppName)
	}

	stateRoot = config.GetEnvAsString(job.EnvVarStateDir, "")
	if stateRoot == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", "", fmt.Errorf("resolve default state dir: %w", err)
		}
		stateRoot = filepath.Join(base, job.AppName)
	}

	return configRoot, stateRoot, nil
}

// loadConfig resolves the roots and loads the session Config, honoring
// -config/-state overrides from the command context when present.
func loadConfig(ctx *cli.Context, outerEnv map[string]string) (job.Config, error) {
	configRoot, stateRoot, err := resolveRoots()
	if err != nil {
		return job.Config{}, err
	}
	if v, ok := ctx.GetFlag("config"); ok && v != "" {
		configRoot = v
	}
	if v, ok := ctx.GetFlag("state"); ok && v != "" {
		stateRoot = v
	}
	return job.LoadConfig(configRoot, stateRoot, outerEnv)
}

// defaultRegistry builds the notifier registry for an interactive CLI
// run: a single console sink that prints delivered messages to stdout.
// Additional sinks (mail, webhook commands) are registered the same
// way a real deployment would add them at startup; the registry itself
// is the teacher's plug-in-capability pattern (see notify.Registry).
func defaultRegistry() *notify.Registry {
	reg := notify.NewRegistry()
	reg.Register("console", notify.ConsoleNotifier{Out: os.Stdout})
	return reg
}

var configFlag = &cli.Flag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "override the config root directory",
	Default: "",
}

var stateFlag = &cli.Flag{
	Name:    "state",
	Aliases: []string{"s"},
	Usage:   "override the state root directory",
	Default: "",
}

func listCommand() *cli.Command {
	cmd := cli.NewCommand("list", "print available job names", version, runList)
	cmd.Flags = []*cli.Flag{
		configFlag,
		stateFlag,
		{Name: "jsonl", Aliases: []string{"j"}, Usage: "print one JSON object per line", Default: "false"},
	}
	return cmd
}

func runList(ctx *cli.Context) error {
	outerEnv := outerEnvironment()
	cfg, err := loadConfig(ctx, outerEnv)
	if err != nil {
		return err
	}
	names, err := job.AvailableJobs(cfg.ConfigRoot)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	jsonl := flagTrue(ctx, "jsonl")
	for _, name := range names {
		if jsonl {
			line, err := json.Marshal(struct {
				Name string `json:"name"`
			}{Name: name})
			if err != nil {
				return err
			}
			fmt.Println(string(line))
		} else {
			fmt.Println(name)
		}
	}
	return nil
}

func runCommand() *cli.Command {
	cmd := cli.NewCommand("run", "run jobs", version, func(ctx *cli.Context) error {
		return fmt.Errorf("run: expected a subcommand, \"due\" or \"now\"")
	})
	cmd.AddSubCommand(runSubCommand("due", false))
	cmd.AddSubCommand(runSubCommand("now", true))
	return cmd
}

func runSubCommand(name string, force bool) *cli.Command {
	cmd := cli.NewCommand(name, "run selected jobs ("+name+")", version, func(ctx *cli.Context) error {
		return runSession(ctx, force)
	})
	cmd.Flags = []*cli.Flag{
		configFlag,
		stateFlag,
		{Name: "all", Aliases: []string{"a"}, Usage: "run every available job", Default: "false"},
	}
	return cmd
}

func runSession(ctx *cli.Context, force bool) error {
	outerEnv := outerEnvironment()
	cfg, err := loadConfig(ctx, outerEnv)
	if err != nil {
		return err
	}

	var names []string
	if !flagTrue(ctx, "all") {
		names = ctx.Args
	}

	registry := defaultRegistry()
	outcomes, err := session.Run(cfg, force, names, registry, outerEnv)
	if err != nil {
		return fmt.Errorf("run session: %w", err)
	}

	for _, o := range outcomes {
		printOutcome(o)
	}
	return nil
}

func printOutcome(o session.Outcome) {
	switch o.Result.Kind {
	case runner.Completed:
		fmt.Printf("%s: completed (exit %d)\n", o.Name, o.Result.ExitStatus)
	case runner.Error:
		fmt.Printf("%s: error: %s\n", o.Name, o.Result.Message)
	case runner.Locked:
		fmt.Printf("%s: locked (already running)\n", o.Name)
	case runner.Skipped:
		fmt.Printf("%s: skipped (not due)\n", o.Name)
	}
}

func statusCommand() *cli.Command {
	cmd := cli.NewCommand("status", "print job configuration and state", version, runStatus)
	cmd.Flags = []*cli.Flag{
		configFlag,
		stateFlag,
		{Name: "jsonl", Aliases: []string{"j"}, Usage: "print one JSON object per line", Default: "false"},
		{Name: "lines", Aliases: []string{"l"}, Usage: "number of trailing log lines to include", Default: "0"},
	}
	return cmd
}

// jobStatus is the shape printed by `status`, both in human-readable
// and JSONL form.
type jobStatus struct {
	Name       string   `json:"name"`
	Schedule   string   `json:"schedule"`
	Jitter     string   `json:"jitter"`
	Queue      string   `json:"queue"`
	Notify     string   `json:"notify"`
	Running    bool     `json:"running"`
	HasLastRun bool     `json:"has_last_run"`
	LastRun    string   `json:"last_run,omitempty"`
	HasExit    bool     `json:"has_exit_status"`
	ExitStatus int      `json:"exit_status,omitempty"`
	Stdout     []string `json:"stdout,omitempty"`
	Stderr     []string `json:"stderr,omitempty"`
	LoadError  string   `json:"error,omitempty"`
}

func runStatus(ctx *cli.Context) error {
	outerEnv := outerEnvironment()
	cfg, err := loadConfig(ctx, outerEnv)
	if err != nil {
		return err
	}

	names := ctx.Args
	if len(names) == 0 {
		names, err = job.AvailableJobs(cfg.ConfigRoot)
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}
	}

	tail := 0
	if v, ok := ctx.GetFlag("lines"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid -l value %q: %w", v, err)
		}
		tail = n
	}
	jsonl := flagTrue(ctx, "jsonl")

	for _, name := range names {
		st := buildStatus(cfg, name, outerEnv, tail)
		if jsonl {
			line, err := json.Marshal(st)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
			continue
		}
		printStatus(st)
	}
	return nil
}

func buildStatus(cfg job.Config, name string, outerEnv map[string]string, tail int) jobStatus {
	st := jobStatus{Name: name}

	j, err := job.Load(cfg.ConfigRoot, name, outerEnv)
	if err != nil {
		st.LoadError = err.Error()
		return st
	}
	st.Schedule = j.Schedule.String()
	st.Jitter = j.Jitter.String()
	st.Queue = j.Queue
	st.Notify = j.Notify.String()

	lastRun, hasLastRun, err := job.LastRun(cfg.StateRoot, name)
	if err != nil {
		st.LoadError = err.Error()
		return st
	}
	st.HasLastRun = hasLastRun
	if hasLastRun {
		st.LastRun = lastRun.Format("2006-01-02T15:04:05Z07:00")
	}

	exitStatus, hasExit, err := job.ExitStatus(cfg.StateRoot, name)
	if err != nil {
		st.LoadError = err.Error()
		return st
	}
	st.HasExit = hasExit
	st.ExitStatus = exitStatus

	st.Running = isRunning(job.LockPath(cfg.StateRoot, name))

	if tail > 0 {
		if stdout, err := statuslog.Load(job.StdoutLogPath(cfg.StateRoot, name)); err == nil {
			st.Stdout = stdout.Tail(tail)
		}
		if stderr, err := statuslog.Load(job.StderrLogPath(cfg.StateRoot, name)); err == nil {
			st.Stderr = stderr.Tail(tail)
		}
	}

	return st
}

// isRunning probes the per-job exclusion lock without blocking: if the
// lock can be taken immediately it is released right away and the job
// is idle; a contended lock means another process currently holds it.
func isRunning(lockPath string) bool {
	lock := filelock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		logger.ErrorF("probe lock %s: %v", lockPath, err)
		return false
	}
	if ok {
		lock.Unlock()
		return false
	}
	return true
}

func printStatus(st jobStatus) {
	if st.LoadError != "" {
		fmt.Printf("%s: error: %s\n", st.Name, st.LoadError)
		return
	}
	state := "idle"
	if st.Running {
		state = "running"
	}
	fmt.Printf("%s: schedule=%s jitter=%s queue=%s notify=%s [%s]\n",
		st.Name, st.Schedule, st.Jitter, st.Queue, st.Notify, state)
	if st.HasLastRun {
		fmt.Printf("  last run: %s\n", st.LastRun)
	} else {
		fmt.Println("  last run: never")
	}
	if st.HasExit {
		fmt.Printf("  exit status: %d\n", st.ExitStatus)
	}
	for _, line := range st.Stdout {
		fmt.Printf("  stdout| %s\n", line)
	}
	for _, line := range st.Stderr {
		fmt.Printf("  stderr| %s\n", line)
	}
}

// flagTrue reports whether a boolean-style flag was set to a truthy
// value. The cli package's flag parser only distinguishes "=value"
// and bare-alias forms (reverting to Default when no value follows),
// so presence alone can't signal a bare switch; callers pass the flag
// explicitly as e.g. --all=true, or omit job names entirely to the
// same effect.
func flagTrue(ctx *cli.Context, name string) bool {
	v, ok := ctx.GetFlag(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "yes":
		return true
	default:
		return false
	}
}
