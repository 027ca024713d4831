package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"io"
	"io/ioutil"
	"os"
)

// ReadJSONInput returns the contents of the file named by args, or stdin
// when args is empty or "-". A terminal on stdin is prompted for input.
func ReadJSONInput(args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		return readFile(args[0])
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return readDataTTY(), nil
	}
	return ioutil.ReadAll(os.Stdin)
}

// OpenBinaryInput opens the file named by args, or stdin when args is empty
// or "-". Binary data is never read from a terminal.
func OpenBinaryInput(args []string) (io.ReadCloser, error) {
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "error opening input file")
		}
		return f, nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return nil, errors.New("refusing to read BSON from a terminal - pass a file or pipe data in")
	}
	return ioutil.NopCloser(bufio.NewReader(os.Stdin)), nil
}

// OpenBinaryOutput creates the file at path, or returns stdout when path is
// empty. ok is false when stdout is a terminal.
func OpenBinaryOutput(path string) (w io.WriteCloser, ok bool, err error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, false, errors.Wrap(err, "error opening output file")
		}
		return f, true, nil
	}
	return nopWriteCloser{os.Stdout}, !isatty.IsTerminal(os.Stdout.Fd()), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func readFile(path string) ([]byte, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading input file")
	}
	return b, nil
}

func readDataTTY() []byte {
	fmt.Fprintln(os.Stderr, "Paste or type the JSON documents you would like to use below.")
	fmt.Fprintln(os.Stderr, "When you are finished, press Ctrl+D.")

	var buf bytes.Buffer
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		buf.Write(scanner.Bytes())
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}
