package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/r3n/loom"
)

const (
	appName     = "loom"
	historyFile = ".loom_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var (
	banner   = fmt.Sprintf("Loom %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", loom.Version)
	helpText = `
REPL commands:
  :quit    Exit the REPL
  :help    Show this help

Anything else is scanned and echoed back in canonical form. Only the
exact spellings above are intercepted; every other get-word scans
normally.
`
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

// colorizeValue paints each non-empty line of a molded value.
func colorizeValue(val string) string {
	lines := strings.Split(val, "\n")
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		lines[i] = blue(ln)
	}
	return strings.Join(lines, "\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "scan":
		os.Exit(cmdScan(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "version":
		fmt.Println(loom.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Loom %s (built %s)

Usage:
  %s scan <file ...>             Check that file(s) scan; report the first error
  %s repl                        Start the REPL (scan and echo canonical form)
  %s fmt [--check] <file ...>    Rewrite file(s) in canonical form
  %s version                     Print the compiled version

`, loom.Version, loom.BuildDate, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// scan
// -----------------------------------------------------------------------------

func cmdScan(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s scan <file ...>\n", appName)
		return 2
	}

	ret := 0
	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
			ret = 1
			continue
		}
		if _, err := loom.ScanBlock(string(src)); err != nil {
			fmt.Fprintln(os.Stderr, red(loom.WrapErrorWithName(err, file, string(src)).Error()))
			ret = 1
			continue
		}
		fmt.Printf("%s %s\n", green("ok"), file)
	}
	return ret
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		switch strings.TrimSpace(code) {
		case "":
			continue
		case ":quit", ":q":
			return 0
		case ":help":
			fmt.Print(helpText)
			continue
		}

		block, err := loom.ScanBlock(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(loom.WrapErrorWithSource(err, code).Error()))
			continue
		}
		fmt.Println(colorizeValue(moldTop(block)))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe accumulates prompt lines until the text scans, or fails
// with an error that more input cannot fix. A half-open bracket or string
// keeps the continuation prompt going.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := loom.ScanBlock(src)
		if perr == nil {
			return src, true
		}
		if loom.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// -----------------------------------------------------------------------------
// fmt
// -----------------------------------------------------------------------------

func cmdFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	check := fs.Bool("check", false, "list files whose canonical form differs; exit 1 if any")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s fmt [--check] <file ...>\n", appName)
		return 2
	}

	ret := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
			ret = 1
			continue
		}
		block, serr := loom.ScanBlock(string(src))
		if serr != nil {
			fmt.Fprintln(os.Stderr, red(loom.WrapErrorWithName(serr, file, string(src)).Error()))
			ret = 1
			continue
		}

		canonical := moldTop(block) + "\n"
		if canonical == string(src) {
			continue
		}
		if *check {
			fmt.Println(file)
			ret = 1
			continue
		}
		if err := os.WriteFile(file, []byte(canonical), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write %s: %v\n", appName, file, err)
			ret = 1
		}
	}
	return ret
}

// moldTop renders the top level of a scanned source block: values joined
// by spaces, line breaks where the source had them, no outer brackets.
func moldTop(block loom.Value) string {
	s := block.Series()
	var b strings.Builder
	for i := 0; i < s.Len(); i++ {
		if s.Mark(i) {
			b.WriteByte('\n')
		} else if i > 0 {
			b.WriteByte(' ')
		}
		el, _ := s.Pick(i)
		out, _ := loom.Mold(el, loom.MoldOpts{})
		b.WriteString(out)
	}
	return b.String()
}
