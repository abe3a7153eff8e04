package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator for a secret
type Prompter interface {
	Prompt(label string) (string, error)
}

// PrompterFunc adapts a plain function to the Prompter interface
type PrompterFunc func(label string) (string, error)

func (f PrompterFunc) Prompt(label string) (string, error) {
	return f(label)
}

// TerminalPrompter reads a secret from In, writing the label to Out.
// When In is a terminal the input is not echoed; otherwise a single line is read.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// StdinPrompter prompts on stderr and reads from stdin
func StdinPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (p *TerminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.Out, label)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
