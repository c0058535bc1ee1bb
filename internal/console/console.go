// Package console implements the interactive command loop of the support bot CLI.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"support-bot/internal/relayclient"
)

const (
	welcomeText = `🤖 Welcome to Local AI Support Bot CLI! 🤖

You can:
- Ask questions using: ask <your question>
- Upload documents using: upload <file_path>
- Get help using: help
- Exit using: exit

Example commands:
- ask What is the weather like?
- upload documents/example.pdf
- help
- exit`

	helpText = `Available Commands:
- help: Show this help message
- upload <file_path>: Upload a document
  Example: upload documents/example.pdf
- ask <question>: Ask a question to the bot
  Example: ask What is the weather like?
- exit: Exit the program`

	farewell       = "Goodbye! 👋"
	unknownCommand = "Unknown command. Type 'help' for available commands."
	promptText     = "Enter your command"
)

// Relay is the remote side of the console. *relayclient.Client satisfies it.
type Relay interface {
	Ask(ctx context.Context, question string) (string, error)
	Upload(ctx context.Context, path string) error
}

// Console reads commands from in and writes rendered results to out.
type Console struct {
	relay  Relay
	in     io.Reader
	out    io.Writer
	log    *slog.Logger
	styles styles
}

// New returns a Console. A nil logger discards diagnostics.
func New(relay Relay, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Console{
		relay:  relay,
		in:     in,
		out:    out,
		log:    log,
		styles: newStyles(out),
	}
}

type line struct {
	text string
	err  error
}

// Run prints the welcome panel and handles commands until exit, end of input, or ctx is done.
// A cancelled ctx aborts the request in flight. Only a read failure on in is returned.
func (c *Console) Run(ctx context.Context) error {
	c.println(c.styles.panel("Support Bot", welcomeText, c.styles.blue))

	// The reader goroutine may stay blocked on in after Run returns; the process is exiting then.
	lines := make(chan line)
	go c.readLines(ctx, lines)

	for {
		c.print("\n" + c.styles.prompt.Render(promptText) + ": ")

		var l line
		var ok bool
		select {
		case <-ctx.Done():
			c.println("\n" + c.styles.warn.Render(farewell))
			return nil
		case l, ok = <-lines:
		}
		if !ok {
			c.println("\n" + c.styles.warn.Render(farewell))
			return nil
		}
		if l.err != nil {
			c.println(c.styles.warn.Render(farewell))
			return fmt.Errorf("reading input: %w", l.err)
		}

		if exit := c.Handle(ctx, l.text); exit {
			return nil
		}
		if ctx.Err() != nil {
			c.println("\n" + c.styles.warn.Render(farewell))
			return nil
		}
	}
}

func (c *Console) readLines(ctx context.Context, out chan<- line) {
	defer close(out)
	sc := bufio.NewScanner(c.in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case out <- line{text: sc.Text()}:
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		select {
		case out <- line{err: err}:
		case <-ctx.Done():
		}
	}
}

// Handle executes one command line and reports whether the loop should stop.
func (c *Console) Handle(ctx context.Context, input string) bool {
	cmd, arg := parseCommand(input)
	c.log.Debug("command", "cmd", cmd)

	switch cmd {
	case "exit":
		c.println(c.styles.warn.Render(farewell))
		return true
	case "help":
		c.println(c.styles.panel("Help", helpText, c.styles.green))
	case "ask":
		c.ask(ctx, arg)
	case "upload":
		c.upload(ctx, arg)
	default:
		c.println(c.styles.warn.Render(unknownCommand))
	}
	return false
}

// parseCommand lower-cases the first word and trims the rest, keeping its case.
func parseCommand(input string) (cmd, arg string) {
	input = strings.TrimSpace(input)
	i := strings.IndexFunc(input, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(input), ""
	}
	return strings.ToLower(input[:i]), strings.TrimSpace(input[i:])
}

func (c *Console) ask(ctx context.Context, question string) {
	if question == "" {
		c.errorf("Error: Please provide a question")
		return
	}

	answer, err := c.relay.Ask(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.Debug("ask failed", "err", err)
		c.errorf("Error: %s", err.Error())
		return
	}
	c.println(c.styles.panel("Bot's Response", answer, c.styles.yellow))
}

func (c *Console) upload(ctx context.Context, path string) {
	if path == "" {
		c.errorf("Error: Please provide a file path")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.errorf("Error: File %s does not exist", path)
		return
	}

	err = c.relay.Upload(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.Debug("upload failed", "path", path, "err", err)
		var statusErr *relayclient.StatusError
		if errors.As(err, &statusErr) {
			c.errorf("Error uploading document: %s", statusErr.Body)
			return
		}
		c.errorf("Error: %s", err.Error())
		return
	}
	c.println(c.styles.ok.Render("Document uploaded successfully!"))
}

func (c *Console) errorf(format string, args ...any) {
	c.println(c.styles.err.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) print(s string) {
	_, _ = io.WriteString(c.out, s)
}

func (c *Console) println(s string) {
	_, _ = io.WriteString(c.out, s+"\n")
}
