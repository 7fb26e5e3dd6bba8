package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yairfalse/apidrift/internal/errors"
)

// readLine prompts on stderr and reads one line from stdin
func (c *cli) readLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(c.err, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.ValidationError("No input received").WithCause(err.Error())
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a password without echo when stdin is a terminal
func (c *cli) readSecret(reader *bufio.Reader, prompt string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.err, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.err)
		if err != nil {
			return "", errors.ValidationError("Failed to read password").WithCause(err.Error())
		}
		return string(secret), nil
	}
	return c.readLine(reader, prompt)
}

// credentials fills in whatever the flags left out by prompting
func (c *cli) credentials(email, password string) (string, string, error) {
	reader := bufio.NewReader(c.in)
	var err error
	if email == "" {
		if email, err = c.readLine(reader, "Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = c.readSecret(reader, "Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}
