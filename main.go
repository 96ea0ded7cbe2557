package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/takoeight0821/lox/config"
	"github.com/takoeight0821/lox/driver"
)

// Exit codes follow sysexits.h.
const (
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
	exitConfig   = 78
)

func main() {
	const (
		inputUsage = "input file path"
	)
	var (
		inputPath  string
		configPath string
		dump       bool
	)
	flag.StringVar(&inputPath, "input", "", inputUsage)
	flag.StringVar(&inputPath, "i", "", inputUsage+" (shorthand)")
	flag.StringVar(&configPath, "config", "", "config file path")
	flag.BoolVar(&dump, "dump", false, "print tokens and syntax tree instead of running")

	flag.Parse()

	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(exitUsage)
	}

	if inputPath == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCode(err))
		}
		if err := RunPrompt(cfg, dump); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitIOErr)
		}
		return
	}

	if err := RunFile(inputPath, dump); err != nil {
		report(err)
		os.Exit(exitCode(err))
	}
}

func RunPrompt(cfg config.Config, dump bool) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer func() {
		saveHistory(line, cfg.History, cfg.HistoryLimit)
		line.Close()
	}()

	if cfg.History != "" {
		if f, err := os.Open(cfg.History); err == nil {
			if _, err := line.ReadHistory(f); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			f.Close()
		}
	}

	session := driver.NewSession(os.Stdout)
	for {
		input, err := line.Prompt(cfg.Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if dump {
			out, err := driver.Dump(input)
			fmt.Print(out)
			report(err)
			continue
		}

		// errors do not end the session; the environment is kept.
		report(session.RunLine(input))
	}
}

func saveHistory(line *liner.State, path string, limit int) {
	if path == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := line.WriteHistory(&buf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := os.WriteFile(path, trimHistory(buf.Bytes(), limit), 0o600); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// trimHistory keeps the last limit lines of data. A limit of zero or less keeps all of it.
func trimHistory(data []byte, limit int) []byte {
	if limit <= 0 {
		return data
	}
	lines := bytes.SplitAfter(data, []byte("\n"))
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}
	if len(lines) <= limit {
		return data
	}
	return bytes.Join(lines[len(lines)-limit:], nil)
}

func RunFile(path string, dump bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if dump {
		out, err := driver.Dump(string(source))
		fmt.Print(out)
		return err
	}

	return driver.NewSession(os.Stdout).Run(string(source))
}

func report(err error) {
	for _, msg := range driver.Diagnostics(err) {
		fmt.Fprintln(os.Stderr, msg)
	}
}

func exitCode(err error) int {
	var ce *config.Error
	if errors.As(err, &ce) {
		return exitConfig
	}
	var de *driver.Error
	if !errors.As(err, &de) {
		return exitIOErr
	}
	switch de.Stage {
	case driver.StageLex, driver.StageParse:
		return exitDataErr
	default:
		return exitSoftware
	}
}
