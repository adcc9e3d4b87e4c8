package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/you-not-fish/kaleido/internal/config"
	"github.com/you-not-fish/kaleido/internal/jit"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

const continuePrompt = "...> "

const replHelp = `Enter definitions, externs and expressions terminated by ';'.
Commands:
  :ops     list the operator table
  :funcs   list known functions
  :natives list host functions an extern can bind
  :ir      print the LLVM IR module so far
  :help    show this text
  :quit    leave the session
`

// runREPL reads units from the terminal until EOF or :quit. Input is
// gathered across lines until it holds only whole units.
func runREPL(tc *toolchain, cfg config.Config) int {
	fmt.Fprintf(tc.out, "Kaleidoscope %s. Type :help for commands.\n", Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := config.ExpandHome(cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		src, ok := readByParseProbe(ln, cfg.Prompt, continuePrompt, tc.sess.Complete)
		if !ok {
			fmt.Fprintln(tc.out)
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if tc.meta(trimmed) {
				return 0
			}
			continue
		}

		if err := tc.driver.Run("<stdin>", strings.NewReader(src)); err != nil {
			tc.log.WithError(err).Debug("input abandoned")
		}
	}
}

// readByParseProbe prompts for lines until the accumulated text is a
// complete set of units according to complete. Meta-commands are returned
// as soon as they are typed. It reports false at end of input.
func readByParseProbe(ln *liner.State, prompt, cont string, complete func(string) bool) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if complete(src) {
			return src, true
		}
	}
}

// meta runs a REPL command and reports whether the session should end.
func (tc *toolchain) meta(cmd string) bool {
	w := tc.out
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprint(w, replHelp)
	case ":ops":
		for _, e := range tc.sess.Ops.Entries() {
			origin := "builtin"
			if e.UserDefined {
				origin = "user"
			}
			if e.Arity == syntax.Binary {
				fmt.Fprintf(w, "%-6s %-3s prec %-3d %s\n", e.Arity, e.Symbol, e.Prec, origin)
			} else {
				fmt.Fprintf(w, "%-6s %-3s          %s\n", e.Arity, e.Symbol, origin)
			}
		}
	case ":funcs":
		for _, f := range tc.sess.Globals.Funcs() {
			fmt.Fprintln(w, f)
		}
	case ":natives":
		natives := jit.Natives()
		names := make([]string, 0, len(natives))
		for name := range natives {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s/%d\n", name, natives[name])
		}
	case ":ir":
		if _, err := tc.engine.Module().WriteTo(w); err != nil {
			fmt.Fprintf(tc.errOut, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(w, "unknown command %s. Type :help for commands.\n", cmd)
	}
	return false
}
