package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	// Interactive reports whether a question can be answered at all.
	Interactive() bool
	Confirm(question string) (bool, error)
}

// TerminalConfirmer prompts on out and reads the answer from in.
type TerminalConfirmer struct {
	In  *os.File
	Out io.Writer
}

func (c TerminalConfirmer) Interactive() bool {
	if c.In == nil {
		return false
	}
	fd := c.In.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c TerminalConfirmer) Confirm(question string) (bool, error) {
	fmt.Fprintf(c.Out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
