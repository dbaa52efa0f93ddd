package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"
)

// CommandHelp is the help page of a command.
type CommandHelp struct {
	Usage         string
	Description   string
	Subcommands   []Subcommand
	Options       *flag.FlagSet
	GlobalOptions *flag.FlagSet
	Examples      []string
}

type Subcommand struct {
	Name        string
	Description string
}

// Print writes the sections that are set, separated by one blank line.
func (h *CommandHelp) Print(w io.Writer, path ...string) {
	var sections []func()

	if h.Usage != "" {
		sections = append(sections, func() {
			fmt.Fprintf(w, "Usage:\n  %s\n", h.Usage)
		})
	}
	if h.Description != "" {
		sections = append(sections, func() {
			fmt.Fprintln(w, "Description:")
			sc := bufio.NewScanner(strings.NewReader(h.Description))
			for sc.Scan() {
				fmt.Fprintf(w, "  %s\n", sc.Text())
			}
		})
	}
	if len(h.Subcommands) > 0 {
		sections = append(sections, func() {
			fmt.Fprintln(w, "Subcommands:")
			for _, s := range h.Subcommands {
				fmt.Fprintf(w, "  %-16s %s\n", s.Name, s.Description)
			}
		})
	}
	if h.Options != nil {
		sections = append(sections, func() {
			fmt.Fprintln(w, "Options:")
			printFlags(w, h.Options)
		})
	}
	if h.GlobalOptions != nil {
		sections = append(sections, func() {
			fmt.Fprintln(w, "Global Options:")
			printFlags(w, h.GlobalOptions)
		})
	}
	if len(h.Examples) > 0 {
		sections = append(sections, func() {
			fmt.Fprintln(w, "Examples:")
			for _, e := range h.Examples {
				fmt.Fprintf(w, "  %s\n", e)
			}
		})
	}
	if len(path) > 0 && len(h.Subcommands) > 0 {
		sections = append(sections, func() {
			fmt.Fprintf(w, "For help on a subcommand:\n  %s help <subcommand>\n", strings.Join(path, " "))
		})
	}

	for i, section := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		section()
	}
}

// printFlags indents the flag defaults of fs.
func printFlags(w io.Writer, fs *flag.FlagSet) {
	var buf bytes.Buffer
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)

	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		fmt.Fprintf(w, "  %s\n", sc.Text())
	}
}
