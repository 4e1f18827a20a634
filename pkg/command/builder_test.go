package command

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/rhobs/mcp-exec/pkg/spec"
)

func convertProgram() *spec.Program {
	return &spec.Program{
		BaseCommand: "convert",
		Tools: []spec.ToolDefinition{{
			Name:       "convert",
			Positional: []spec.ArgumentDecl{{Name: "input"}},
			RequiredFlags: []spec.FlagDecl{
				{Flag: "-force", ParamName: "force"},
			},
			OptionalFlags: []spec.FlagDecl{
				{Flag: "-resize", ParamName: "resize", TakesValue: true},
			},
		}},
		ExtraArgs: []string{"--quiet"},
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		args spec.Arguments
		want []string
	}{
		{
			name: "all arguments",
			args: spec.Arguments{
				"input":  spec.StringValue("a.png"),
				"force":  spec.BoolValue(true),
				"resize": spec.StringValue("50%"),
			},
			want: []string{"convert", "a.png", "-force", "-resize", "50%", "--quiet"},
		},
		{
			name: "optional flag omitted",
			args: spec.Arguments{
				"input": spec.StringValue("a.png"),
				"force": spec.BoolValue(true),
			},
			want: []string{"convert", "a.png", "-force", "--quiet"},
		},
		{
			name: "optional flag with empty value",
			args: spec.Arguments{
				"input":  spec.StringValue("a.png"),
				"force":  spec.BoolValue(true),
				"resize": spec.StringValue(""),
			},
			want: []string{"convert", "a.png", "-force", "--quiet"},
		},
		{
			name: "required boolean flag is rendered even when false",
			args: spec.Arguments{
				"input": spec.StringValue("a.png"),
				"force": spec.BoolValue(false),
			},
			want: []string{"convert", "a.png", "-force", "--quiet"},
		},
		{
			name: "undeclared arguments are ignored",
			args: spec.Arguments{
				"input": spec.StringValue("a.png"),
				"force": spec.BoolValue(true),
				"other": spec.StringValue("x"),
			},
			want: []string{"convert", "a.png", "-force", "--quiet"},
		},
	}

	program := convertProgram()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(program, &program.Tools[0], tt.args)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSubcommand(t *testing.T) {
	program, err := spec.Compile("git", []string{
		"--extra-args", "--no-pager",
		"--tool", "log Show commit logs",
		"--pos-arg", "rev Revision",
		"--flag", "--oneline One line per commit",
		"--flag", "-n= Limit",
		"--flag", "--stat Show stats",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	got, err := Build(program, &program.Tools[0], spec.Arguments{
		"rev":     spec.StringValue("HEAD~3"),
		"oneline": spec.BoolValue(true),
		"n":       spec.StringValue("5"),
		"stat":    spec.BoolValue(false),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"git", "log", "HEAD~3", "--oneline", "-n", "5", "--no-pager"}
	if !slices.Equal(got, want) {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuildValueRenderingFollowsDeclaration(t *testing.T) {
	program := &spec.Program{
		BaseCommand: "tool",
		Tools: []spec.ToolDefinition{{
			Name: "tool",
			OptionalFlags: []spec.FlagDecl{
				{Flag: "--level", ParamName: "level", TakesValue: true},
				{Flag: "--verbose", ParamName: "verbose"},
			},
		}},
	}

	got, err := Build(program, &program.Tools[0], spec.Arguments{
		"level":   spec.BoolValue(true),
		"verbose": spec.StringValue("yes"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"tool", "--level", "true", "--verbose"}
	if !slices.Equal(got, want) {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuildMissingArgument(t *testing.T) {
	tests := []struct {
		name    string
		args    spec.Arguments
		missing string
	}{
		{
			name:    "missing positional",
			args:    spec.Arguments{"force": spec.BoolValue(true)},
			missing: "input",
		},
		{
			name:    "missing required flag",
			args:    spec.Arguments{"input": spec.StringValue("a.png")},
			missing: "force",
		},
	}

	program := convertProgram()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(program, &program.Tools[0], tt.args)
			if !errors.Is(err, ErrMissingArgument) {
				t.Fatalf("error = %v, want %v", err, ErrMissingArgument)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q does not name %q", err, tt.missing)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	program := convertProgram()
	got := strings.Join(Template(program, &program.Tools[0]), " ")
	want := "convert <input> -force [-resize <resize>] --quiet"
	if got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
}
