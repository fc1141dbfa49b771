// nolint:errcheck
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RepositoryURL is printed at the bottom of every help page
const RepositoryURL = "https://github.com/viyanta/viyanta-web-sub000"

var (
	titleStyle       = color.New(color.Bold, color.FgHiWhite)
	commandStyle     = color.New(color.FgHiGreen)
	descriptionStyle = color.New(color.FgHiCyan)
	exampleStyle     = color.New(color.FgHiCyan)
	flagStyle        = color.New(color.Bold, color.FgHiCyan)
	tipStyle         = color.New(color.FgHiYellow)
	groupTitleStyle  = color.New(color.Bold, color.FgHiMagenta)
)

var HelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}` + titleStyle.Sprintf("Source:") + color.New(color.FgYellow).Sprintln(
	"		"+RepositoryURL,
)

func rpad(s string, padding int) string {
	return fmt.Sprintf("%-*s", padding, s)
}

func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func visible(c *cobra.Command) bool {
	return c.IsAvailableCommand() || c.Name() == "help"
}

// writeCommands lists the subcommands accepted by keep under a title
func writeCommands(buf *bytes.Buffer, title string, style *color.Color, cmds []*cobra.Command, keep func(*cobra.Command) bool) {
	fmt.Fprint(buf, "\n\n")
	style.Fprint(buf, title)
	for _, sub := range cmds {
		if !visible(sub) || !keep(sub) {
			continue
		}
		fmt.Fprint(buf, "\n  ")
		commandStyle.Fprint(buf, rpad(sub.Name(), sub.NamePadding()))
		fmt.Fprint(buf, " ")
		descriptionStyle.Fprint(buf, sub.Short)
	}
}

func ungrouped(cmd *cobra.Command) bool {
	for _, sub := range cmd.Commands() {
		if sub.GroupID == "" && sub.IsAvailableCommand() {
			return true
		}
	}
	return false
}

var (
	reWithShort = regexp.MustCompile(`^( {2,})(-[a-zA-Z]), (--[a-zA-Z0-9-]+)(.*)$`)
	reLongOnly  = regexp.MustCompile(`^( {2,})(--[a-zA-Z0-9-]+)(.*)$`)
)

// colorFlags highlights the flag names of a pflag usage block
func colorFlags(raw string) []byte {
	var out bytes.Buffer

	for _, line := range strings.Split(raw, "\n") {
		if m := reWithShort.FindStringSubmatch(line); m != nil {
			out.WriteString(m[1])
			flagStyle.Fprint(&out, m[2])
			out.WriteString(", " + m[3] + m[4])
		} else if m := reLongOnly.FindStringSubmatch(line); m != nil {
			out.WriteString(m[1])
			flagStyle.Fprint(&out, m[2])
			out.WriteString(m[3])
		} else {
			out.WriteString(line)
		}
		out.WriteByte('\n')
	}

	return out.Bytes()
}

// ColorUsageFunc writes a colored usage page for cmd, grouping subcommands
// by their cobra group
func ColorUsageFunc(w io.Writer, cmd *cobra.Command) error {
	buf := &bytes.Buffer{}

	titleStyle.Fprint(buf, "Usage:")
	if cmd.Runnable() {
		fmt.Fprint(buf, "\n  ")
		commandStyle.Fprint(buf, cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprint(buf, "\n  ")
		commandStyle.Fprintf(buf, "%s [command]", cmd.CommandPath())
	}

	if cmd.HasExample() {
		fmt.Fprint(buf, "\n\n")
		titleStyle.Fprint(buf, "Examples:")
		fmt.Fprint(buf, "\n")
		exampleStyle.Fprint(buf, cmd.Example)
	}

	if cmd.HasAvailableSubCommands() {
		cmds := cmd.Commands()
		all := func(*cobra.Command) bool { return true }

		if len(cmd.Groups()) == 0 {
			writeCommands(buf, "Available Commands:", titleStyle, cmds, all)
		} else {
			for _, group := range cmd.Groups() {
				id := group.ID
				writeCommands(buf, group.Title, groupTitleStyle, cmds, func(c *cobra.Command) bool {
					return c.GroupID == id
				})
			}
			if ungrouped(cmd) {
				writeCommands(buf, "Additional Commands:", titleStyle, cmds, func(c *cobra.Command) bool {
					return c.GroupID == ""
				})
			}
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprint(buf, "\n\n")
		titleStyle.Fprint(buf, "Flags:")
		fmt.Fprint(buf, "\n")
		buf.Write(bytes.TrimRight(colorFlags(trimRightSpace(cmd.LocalFlags().FlagUsages())), "\n"))
	}

	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprint(buf, "\n\n")
		titleStyle.Fprint(buf, "Global Flags:")
		fmt.Fprint(buf, "\n")
		buf.Write(bytes.TrimRight(colorFlags(trimRightSpace(cmd.InheritedFlags().FlagUsages())), "\n"))
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprint(buf, "\n\n")
		tipStyle.Fprintf(buf, "Use \"%s [command] --help\" for more information about a command.", cmd.CommandPath())
	}

	fmt.Fprintln(buf)

	_, err := w.Write(buf.Bytes())
	return err
}
