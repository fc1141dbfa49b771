package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	color.NoColor = true
}

func newTestCommand() *cobra.Command {
	root := &cobra.Command{Use: "tablelens"}
	root.AddGroup(&cobra.Group{ID: "local", Title: "Local input:"})
	root.AddCommand(
		&cobra.Command{Use: "render", Short: "Print a table", GroupID: "local", Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "version", Short: "Print version", Run: func(*cobra.Command, []string) {}},
	)
	root.Flags().StringP("config", "c", "", "Config path")
	root.Flags().Bool("verbose", false, "Verbose output")
	return root
}

func TestColorUsageFunc(t *testing.T) {
	var buf bytes.Buffer
	if err := ColorUsageFunc(&buf, newTestCommand()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Usage:",
		"tablelens [command]",
		"Local input:",
		"Additional Commands:",
		"-c, --config",
		"--verbose",
		`Use "tablelens [command] --help"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected usage to contain %q, got:\n%s", want, out)
		}
	}

	local := strings.Index(out, "Local input:")
	additional := strings.Index(out, "Additional Commands:")
	if render := strings.Index(out, "render"); render < local || render > additional {
		t.Error("Expected render listed under its group")
	}
	if version := strings.LastIndex(out, "version"); version < additional {
		t.Error("Expected version listed under additional commands")
	}
}

func TestColorFlags(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"  -c, --config string   Config path", "  -c, --config string   Config path\n"},
		{"      --verbose   Verbose output", "      --verbose   Verbose output\n"},
		{"plain text", "plain text\n"},
	}

	for _, tt := range tests {
		if got := string(colorFlags(tt.line)); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestHelpTemplate(t *testing.T) {
	if !strings.Contains(HelpTemplate, RepositoryURL) {
		t.Errorf("Expected the help template to link %s", RepositoryURL)
	}
}
