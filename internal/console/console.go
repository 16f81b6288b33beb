// Package console is the host/data channel: an interactive line console
// whose input reaches the dispatcher as HostDataReceived events.
package console

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sweeney/tracker-uplink/internal/logic"
)

// Console reads lines from the terminal and delivers each as host data.
type Console struct {
	rl   *readline.Instance
	sink func(logic.Event)
}

// New creates a Console delivering input to sink.
func New(sink func(logic.Event)) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tracker> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, sink: sink}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run reads lines until EOF or Close. Empty lines are ignored.
func (c *Console) Run() {
	for {
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if !errors.Is(err, io.EOF) {
				log.Printf("console: %v", err)
			}
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		c.sink(logic.HostData([]byte(input)))
	}
}

// Notify prints a diagnostic above the prompt. It implements logic.Observer.
func (c *Console) Notify(msg string) {
	fmt.Fprintln(c.rl.Stdout(), msg)
}

// Close stops Run.
func (c *Console) Close() error {
	return c.rl.Close()
}
