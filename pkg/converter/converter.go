package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// ErrUnsupported is returned for files no converter command accepts
var ErrUnsupported = errors.New("converter: unsupported file type")

// Placeholders substituted in command arguments
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// Command describes an external program that writes an STL file. Args[0]
// is the program; {input} and {output} are replaced by absolute paths.
type Command struct {
	Extensions []string `toml:"extensions"`
	Args       []string `toml:"args"`
}

// DefaultCommands converts OpenSCAD sources with openscad and STEP or IGES
// models with gmsh.
func DefaultCommands() []Command {
	return []Command{
		{Extensions: []string{".scad"}, Args: []string{"openscad", "-o", OutputPlaceholder, InputPlaceholder}},
		{Extensions: []string{".step", ".stp", ".iges", ".igs"}, Args: []string{"gmsh", InputPlaceholder, "-2", "-format", "stl", "-o", OutputPlaceholder}},
	}
}

// Converter runs the configured command for a source file
type Converter struct {
	workDir  string
	commands map[string]Command
}

// New creates a converter resolving relative paths against workDir. Later
// commands override earlier ones for the same extension.
func New(workDir string, commands []Command) *Converter {
	c := &Converter{workDir: workDir, commands: make(map[string]Command)}
	for _, cmd := range commands {
		for _, ext := range cmd.Extensions {
			c.commands[strings.ToLower(ext)] = cmd
		}
	}
	return c
}

// Extensions lists the extensions with a command
func (c *Converter) Extensions() []string {
	return lo.Keys(c.commands)
}

// Supports reports whether path has a configured command
func (c *Converter) Supports(path string) bool {
	_, ok := c.commands[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (c *Converter) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.workDir, path)
}

// ConvertToSTL renders input into outputFile
func (c *Converter) ConvertToSTL(ctx context.Context, input, outputFile string) error {
	command, ok := c.commands[strings.ToLower(filepath.Ext(input))]
	if !ok || len(command.Args) == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupported, input)
	}

	program := command.Args[0]
	if _, err := exec.LookPath(program); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", program, err)
	}

	absInput, absOutput := c.abs(input), c.abs(outputFile)
	args := lo.Map(command.Args[1:], func(arg string, _ int) string {
		arg = strings.ReplaceAll(arg, InputPlaceholder, absInput)
		return strings.ReplaceAll(arg, OutputPlaceholder, absOutput)
	})

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = c.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("failed to convert %s: %v\n", input, err))
		if stderr.Len() > 0 {
			errMsg.WriteString("stderr: ")
			errMsg.WriteString(stderr.String())
		}
		if stdout.Len() > 0 {
			errMsg.WriteString("stdout: ")
			errMsg.WriteString(stdout.String())
		}
		return errors.New(errMsg.String())
	}

	if _, err := os.Stat(absOutput); err != nil {
		return fmt.Errorf("%s produced no output: %w", program, err)
	}
	return nil
}

// ConvertToTemp converts input into a new temporary STL file and returns
// its path. The caller removes the file.
func (c *Converter) ConvertToTemp(ctx context.Context, input string) (string, error) {
	tmp, err := os.CreateTemp("", "plmview_*.stl")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	if err := c.ConvertToSTL(ctx, input, path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Dependencies lists the files whose change requires a new conversion:
// the input itself and, for OpenSCAD sources, every used or included file.
func (c *Converter) Dependencies(input string) ([]string, error) {
	absInput := c.abs(input)
	if strings.ToLower(filepath.Ext(input)) != ".scad" {
		return []string{absInput}, nil
	}
	return resolveScadDependencies(c.workDir, absInput)
}
