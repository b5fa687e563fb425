package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// launchStrategy is one way of starting the official text client. Strategies
// are tried in order until one produces a process that stays up.
type launchStrategy struct {
	name  string
	args  func(cfg SourceConfig, ap ArchipelagoConfig) []string
	stdin func(ap ArchipelagoConfig) []string // commands typed after launch
}

var launchStrategies = []launchStrategy{
	{
		name: "CommonClient with --connect",
		args: func(cfg SourceConfig, ap ArchipelagoConfig) []string {
			args := []string{
				filepath.Join(cfg.ClientDir, "CommonClient.py"),
				"--connect", net.JoinHostPort(ap.Host, ap.Port),
				"--name", ap.SlotName,
			}
			if ap.Password != "" {
				args = append(args, "--password", ap.Password)
			}
			return args
		},
	},
	{
		name: "TextClient",
		args: func(cfg SourceConfig, ap ArchipelagoConfig) []string {
			args := []string{
				filepath.Join(cfg.ClientDir, "TextClient.py"),
				net.JoinHostPort(ap.Host, ap.Port),
			}
			if ap.Password != "" {
				args = append(args, "--password", ap.Password)
			}
			return args
		},
	},
	{
		name: "CommonClient with manual /connect",
		args: func(cfg SourceConfig, ap ArchipelagoConfig) []string {
			return []string{filepath.Join(cfg.ClientDir, "CommonClient.py")}
		},
		stdin: func(ap ArchipelagoConfig) []string {
			cmds := []string{
				"/connect " + net.JoinHostPort(ap.Host, ap.Port),
				"/name " + ap.SlotName,
			}
			if ap.Password != "" {
				cmds = append(cmds, "/password "+ap.Password)
			}
			return cmds
		},
	},
}

// SubprocessSource spawns the official Archipelago text client and scrapes
// its merged stdout/stderr line by line into the parser.
type SubprocessSource struct {
	cfg         SourceConfig
	ap          ArchipelagoConfig
	subscribers []LineSubscriber
}

func NewSubprocessSource(cfg SourceConfig, ap ArchipelagoConfig) *SubprocessSource {
	return &SubprocessSource{cfg: cfg, ap: ap}
}

func (s *SubprocessSource) Subscribe(sub LineSubscriber) {
	s.subscribers = append(s.subscribers, sub)
}

func (s *SubprocessSource) Run(ctx context.Context) error {
	dir, err := s.findClientDir()
	if err != nil {
		return err
	}
	s.cfg.ClientDir = dir

	wait, output, err := s.launch(ctx)
	if err != nil {
		return err
	}

	log.Println("monitoring archipelago client output")
	scanner := bufio.NewScanner(output)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Text()
		for _, sub := range s.subscribers {
			sub.OnLine(line)
		}
	}

	waitErr := wait()
	if ctx.Err() != nil {
		return nil
	}
	if waitErr != nil {
		return fmt.Errorf("client exited: %w", waitErr)
	}
	return nil
}

// findClientDir locates an Archipelago installation containing the client
// scripts, checking the configured directory first, then common locations.
func (s *SubprocessSource) findClientDir() (string, error) {
	home, _ := os.UserHomeDir()
	candidates := []string{
		s.cfg.ClientDir,
		".",
		filepath.Join(home, "Archipelago"),
		filepath.Join(home, "AppData", "Local", "Archipelago"),
		`C:\Archipelago`,
		`C:\Program Files\Archipelago`,
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "CommonClient.py")); err == nil {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return dir, nil
			}
			log.Printf("found archipelago installation at %s", abs)
			return abs, nil
		}
	}
	return "", fmt.Errorf("no Archipelago installation found (set source.client_dir)")
}

// launch tries each strategy until one yields a process still running two
// seconds after startup. The returned wait function blocks until the
// process exits.
func (s *SubprocessSource) launch(ctx context.Context) (func() error, io.Reader, error) {
	for i, strategy := range launchStrategies {
		log.Printf("trying launch strategy %d: %s", i+1, strategy.name)

		cmd := exec.CommandContext(ctx, s.cfg.Python, strategy.args(s.cfg, s.ap)...)
		cmd.Dir = s.cfg.ClientDir
		// Ask for a graceful exit before the kill on context cancel.
		cmd.Cancel = func() error {
			return cmd.Process.Signal(syscall.SIGTERM)
		}
		cmd.WaitDelay = 5 * time.Second

		pr, pw := io.Pipe()
		cmd.Stdout = pw
		cmd.Stderr = pw

		stdin, err := cmd.StdinPipe()
		if err != nil {
			log.Printf("strategy %d: stdin: %v", i+1, err)
			continue
		}

		if err := cmd.Start(); err != nil {
			log.Printf("strategy %d failed to start: %v", i+1, err)
			continue
		}

		if strategy.stdin != nil {
			for _, line := range strategy.stdin(s.ap) {
				if _, err := io.WriteString(stdin, line+"\n"); err != nil {
					log.Printf("strategy %d: write stdin: %v", i+1, err)
					break
				}
			}
		}

		// Give the process a moment to fail fast on bad arguments.
		exited := make(chan error, 1)
		go func() {
			err := cmd.Wait()
			pw.CloseWithError(err)
			exited <- err
		}()
		select {
		case err := <-exited:
			log.Printf("strategy %d exited immediately: %v", i+1, err)
			continue
		case <-time.After(2 * time.Second):
		}

		log.Printf("strategy %d successful, client running (pid %d)", i+1, cmd.Process.Pid)
		return func() error { return <-exited }, pr, nil
	}
	return nil, nil, fmt.Errorf("all client launch strategies failed")
}
