// internal/cli/help.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/law-makers/encuestas/internal/ui"
)

const helpWidth = 80

// helpFunc renders the full help of cmd to its output writer
func helpFunc(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()
	p := ui.For(w)

	fmt.Fprintf(w, "\n%s\n", p.Title(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if long := strings.TrimSpace(cmd.Long); long != "" && long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", long)
	}

	writeUsage(w, p, cmd)

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", p.Heading("Examples"))
		for i, line := range strings.Split(cmd.Example, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, "#"):
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s\n", p.Dim(line))
			default:
				fmt.Fprintf(w, "  $ %s\n", p.Command(line))
			}
		}
	}

	writeCommands(w, p, cmd)

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", p.Heading("Flags"))
		writeFlags(w, p, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n", p.Heading("Global Flags"))
		writeFlags(w, p, cmd.InheritedFlags())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", p.Dim(fmt.Sprintf("Use \"%s <command> --help\" for more information about a command.", cmd.CommandPath())))
	}
	fmt.Fprintln(w)
}

// usageFunc renders the short usage shown after argument errors
func usageFunc(cmd *cobra.Command) error {
	w := cmd.OutOrStderr()
	p := ui.For(w)

	writeUsage(w, p, cmd)
	writeCommands(w, p, cmd)
	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", p.Heading("Flags"))
		writeFlags(w, p, cmd.LocalFlags())
	}
	fmt.Fprintf(w, "\n%s\n", p.Dim(fmt.Sprintf("Use \"%s --help\" for more information.", cmd.CommandPath())))
	return nil
}

func writeUsage(w io.Writer, p ui.Painter, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", p.Heading("Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", p.Command(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s <command> [flags]\n", p.Command(cmd.CommandPath()))
	}
}

func writeCommands(w io.Writer, p ui.Painter, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}

	var cmds []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "help" {
			continue
		}
		cmds = append(cmds, c)
		width = max(width, len(c.Name()))
	}

	fmt.Fprintf(w, "\n%s\n", p.Heading("Commands"))
	for _, c := range cmds {
		pad := strings.Repeat(" ", width-len(c.Name())+2)
		fmt.Fprintf(w, "  %s%s%s\n", p.Command(c.Name()), pad, p.Dim(c.Short))
	}
}

// writeFlags prints pflag's aligned usages, colouring the flag names
func writeFlags(w io.Writer, p ui.Painter, flags *pflag.FlagSet) {
	for _, line := range strings.Split(flags.FlagUsagesWrapped(helpWidth), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		if !strings.HasPrefix(trimmed, "-") {
			fmt.Fprintln(w, line)
			continue
		}
		name, rest, _ := strings.Cut(trimmed, "  ")
		fmt.Fprintf(w, "%s%s  %s\n", indent, p.Flag(name), rest)
	}
}
