package spec

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestCompileSingleTool(t *testing.T) {
	program, err := Compile("convert", []string{
		"Resize images",
		"--pos-arg", "input Input file",
		"--flag", "-resize= Resize dimensions",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if program.BaseCommand != "convert" {
		t.Errorf("BaseCommand = %q, want %q", program.BaseCommand, "convert")
	}
	if len(program.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(program.Tools))
	}
	if program.MultiTool() {
		t.Error("expected single-tool program")
	}

	want := ToolDefinition{
		Name:        "convert",
		Description: "Resize images",
		Positional:  []ArgumentDecl{{Name: "input", Description: "Input file"}},
		OptionalFlags: []FlagDecl{
			{Flag: "-resize", ParamName: "resize", Description: "Resize dimensions", TakesValue: true},
		},
	}
	if !reflect.DeepEqual(program.Tools[0], want) {
		t.Errorf("tool = %+v, want %+v", program.Tools[0], want)
	}
}

func TestCompileMultiTool(t *testing.T) {
	program, err := Compile("book-by-para", []string{
		"--tool", "start Start reading",
		"--pos-arg", "file Path",
		"--tool", "next Get next paragraph",
		"--tool", "status Show status",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	var names []string
	for _, tool := range program.Tools {
		names = append(names, tool.Name)
		if tool.Subcommand != tool.Name {
			t.Errorf("tool %q: Subcommand = %q, want name", tool.Name, tool.Subcommand)
		}
	}
	if want := []string{"start", "next", "status"}; !slices.Equal(names, want) {
		t.Fatalf("tool names = %v, want %v", names, want)
	}
	if !program.MultiTool() {
		t.Error("expected multi-tool program")
	}

	if len(program.Tools[0].Positional) != 1 || program.Tools[0].Positional[0].Name != "file" {
		t.Errorf("start positional = %+v, want [file]", program.Tools[0].Positional)
	}
	for _, tool := range program.Tools[1:] {
		if len(tool.Positional) != 0 {
			t.Errorf("tool %q: expected no positional arguments, got %+v", tool.Name, tool.Positional)
		}
	}
	if program.Tools[1].Description != "Get next paragraph" {
		t.Errorf("next description = %q", program.Tools[1].Description)
	}
}

func TestCompileFlagOrdering(t *testing.T) {
	program, err := Compile("git", []string{
		"--tool", "commit Record changes",
		"--required-flag", "-m= Message",
		"--flag", "--amend Amend the last commit",
		"--required-flag", "--author= Author",
		"--flag", "--no-verify Skip hooks",
		"--pos-arg", "path Path to commit",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tool := program.Tools[0]
	var required, optional []string
	for _, f := range tool.RequiredFlags {
		required = append(required, f.Flag)
	}
	for _, f := range tool.OptionalFlags {
		optional = append(optional, f.Flag)
	}
	if want := []string{"-m", "--author"}; !slices.Equal(required, want) {
		t.Errorf("required flags = %v, want %v", required, want)
	}
	if want := []string{"--amend", "--no-verify"}; !slices.Equal(optional, want) {
		t.Errorf("optional flags = %v, want %v", optional, want)
	}
	if tool.OptionalFlags[1].ParamName != "no-verify" {
		t.Errorf("ParamName = %q, want %q", tool.OptionalFlags[1].ParamName, "no-verify")
	}
}

func TestCompileExtraArgs(t *testing.T) {
	tests := []struct {
		name       string
		tokens     []string
		wantExtra  []string
		wantDesc   string
		multiTool  bool
		wantToolsN int
	}{
		{
			name:       "accumulates across occurrences",
			tokens:     []string{"--extra-args", "a b c", "Describe", "--extra-args", "d  e"},
			wantExtra:  []string{"a", "b", "c", "d", "e"},
			wantDesc:   "Describe",
			wantToolsN: 1,
		},
		{
			name:       "removed before mode selection",
			tokens:     []string{"--extra-args", "--json", "--tool", "ls List"},
			wantExtra:  []string{"--json"},
			multiTool:  true,
			wantToolsN: 1,
		},
		{
			name:       "trailing without value stays in the stream",
			tokens:     []string{"Describe", "--extra-args"},
			wantDesc:   "Describe",
			wantToolsN: 1,
		},
		{
			name:       "extraction happens before the description is taken",
			tokens:     []string{"--extra-args", "-q", "Quiet tool"},
			wantExtra:  []string{"-q"},
			wantDesc:   "Quiet tool",
			wantToolsN: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Compile("cmd", tt.tokens)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if !slices.Equal(program.ExtraArgs, tt.wantExtra) {
				t.Errorf("ExtraArgs = %q, want %q", program.ExtraArgs, tt.wantExtra)
			}
			if len(program.Tools) != tt.wantToolsN {
				t.Fatalf("expected %d tools, got %d", tt.wantToolsN, len(program.Tools))
			}
			if program.MultiTool() != tt.multiTool {
				t.Errorf("MultiTool() = %v, want %v", program.MultiTool(), tt.multiTool)
			}
			if !tt.multiTool && program.Tools[0].Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", program.Tools[0].Description, tt.wantDesc)
			}
		})
	}
}

func TestCompilePermissiveScanning(t *testing.T) {
	program, err := Compile("convert", []string{
		"Resize images",
		"--unknown", "--pos-arg", "input Input file",
		"stray",
		"--flag",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tool := program.Tools[0]
	if len(tool.Positional) != 1 {
		t.Errorf("expected 1 positional argument, got %d", len(tool.Positional))
	}
	if len(tool.OptionalFlags) != 0 {
		t.Errorf("trailing --flag without a value should be dropped, got %+v", tool.OptionalFlags)
	}
}

func TestCompileMultiToolIgnoresLeadingTokens(t *testing.T) {
	program, err := Compile("kubectl", []string{"some description", "--tool", "get Get resources"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(program.Tools) != 1 || program.Tools[0].Name != "get" {
		t.Errorf("tools = %+v, want [get]", program.Tools)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		tokens  []string
		wantErr error
	}{
		{
			name:    "missing command",
			command: "",
			tokens:  []string{"desc"},
			wantErr: ErrMissingCommand,
		},
		{
			name:    "missing description",
			command: "convert",
			tokens:  nil,
			wantErr: ErrMissingDescription,
		},
		{
			name:    "missing description after extra args extraction",
			command: "convert",
			tokens:  []string{"--extra-args", "-q"},
			wantErr: ErrMissingDescription,
		},
		{
			name:    "pos-arg before any tool",
			command: "book",
			tokens:  []string{"--pos-arg", "file Path", "--tool", "start Start"},
			wantErr: ErrDeclarationBeforeTool,
		},
		{
			name:    "flag before any tool",
			command: "book",
			tokens:  []string{"--flag", "-v Verbose", "--tool", "start Start"},
			wantErr: ErrDeclarationBeforeTool,
		},
		{
			name:    "required flag before any tool",
			command: "book",
			tokens:  []string{"--required-flag", "-v Verbose", "--tool", "start Start"},
			wantErr: ErrDeclarationBeforeTool,
		},
		{
			name:    "tool token without value",
			command: "book",
			tokens:  []string{"--tool"},
			wantErr: ErrNoTools,
		},
		{
			name:    "duplicate tool",
			command: "book",
			tokens:  []string{"--tool", "start Start", "--tool", "start Again"},
			wantErr: ErrDuplicateTool,
		},
		{
			name:    "empty tool name",
			command: "book",
			tokens:  []string{"--tool", "  "},
			wantErr: ErrEmptyToolName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Compile(tt.command, tt.tokens)
			if err == nil {
				t.Fatalf("expected error, got program %+v", program)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProgramTool(t *testing.T) {
	program, err := Compile("book", []string{"--tool", "start Start", "--tool", "next Next"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tool, ok := program.Tool("next")
	if !ok {
		t.Fatal("expected to find tool next")
	}
	if tool.Description != "Next" {
		t.Errorf("description = %q, want %q", tool.Description, "Next")
	}
	if _, ok := program.Tool("missing"); ok {
		t.Error("expected missing tool lookup to fail")
	}
}
