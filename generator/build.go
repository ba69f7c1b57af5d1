package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// InputArg is replaced in a compiler's arguments with the scratch file path.
const InputArg = "{input}"

const maxDiagnostics = 8 << 10

// Compiler is an external build tool invoked once per artifact. It reads the
// intermediate source from the file named by InputArg and writes the
// compiled result to stdout.
type Compiler struct {
	Name    string
	Command string
	Args    []string
	// Ext is the scratch file extension, e.g. ".scss" or ".jsx".
	Ext string
}

// ParseCompiler splits a command line such as
// "npx --no-install sass --style=compressed {input}" into a Compiler.
// An InputArg is appended when the command line does not mention one.
func ParseCompiler(name, commandLine, ext string) (Compiler, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return Compiler{}, fmt.Errorf("%s compiler command is empty", name)
	}
	args := fields[1:]
	hasInput := false
	for _, arg := range args {
		if strings.Contains(arg, InputArg) {
			hasInput = true
			break
		}
	}
	if !hasInput {
		args = append(args, InputArg)
	}
	return Compiler{Name: name, Command: fields[0], Args: args, Ext: ext}, nil
}

// BuildObserver receives the duration and outcome of each tool run.
type BuildObserver func(tool string, elapsed time.Duration, err error)

// Builder runs the style and script compilers.
type Builder struct {
	Style      Compiler
	Script     Compiler
	ScratchDir string
	Timeout    time.Duration
	Observe    BuildObserver
}

// CompileStyle turns the substituted stylesheet into the final one.
func (b *Builder) CompileStyle(ctx context.Context, intermediateCSS string) (string, error) {
	return b.run(ctx, b.Style, intermediateCSS)
}

// CompileScript down-levels the substituted script.
func (b *Builder) CompileScript(ctx context.Context, intermediateScript string) (string, error) {
	return b.run(ctx, b.Script, intermediateScript)
}

func (b *Builder) run(ctx context.Context, c Compiler, source string) (out string, err error) {
	started := time.Now()
	defer func() {
		if b.Observe != nil {
			b.Observe(c.Name, time.Since(started), err)
		}
	}()

	scratch, err := os.CreateTemp(b.ScratchDir, "widget-"+c.Name+"-*"+c.Ext)
	if err != nil {
		return "", buildToolFailure(c.Name, -1, "", fmt.Errorf("create scratch file: %w", err))
	}
	scratchPath := scratch.Name()
	defer os.Remove(scratchPath)

	if _, err := scratch.WriteString(source); err != nil {
		scratch.Close()
		return "", buildToolFailure(c.Name, -1, "", fmt.Errorf("write scratch file: %w", err))
	}
	if err := scratch.Close(); err != nil {
		return "", buildToolFailure(c.Name, -1, "", fmt.Errorf("close scratch file: %w", err))
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = strings.ReplaceAll(arg, InputArg, scratchPath)
	}

	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &limitedBuffer{max: maxDiagnostics, buf: &stderr}

	runErr := cmd.Run()
	diagnostics := strings.TrimSpace(stderr.String())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", buildToolFailure(c.Name, -1, diagnostics, fmt.Errorf("%s compiler did not finish: %w", c.Name, ctxErr))
	}
	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", buildToolFailure(c.Name, exitCode, diagnostics, runErr)
	}
	if stdout.Len() == 0 {
		return "", buildToolFailure(c.Name, 0, diagnostics, errors.New("compiler produced no output"))
	}
	return stdout.String(), nil
}

// limitedBuffer keeps the first max bytes written and drops the rest, so a
// chatty compiler can't grow diagnostics without bound.
type limitedBuffer struct {
	max int
	buf *bytes.Buffer
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}
