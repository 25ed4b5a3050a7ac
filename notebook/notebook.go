package notebook

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Cell is one magic invocation of a notebook.
type Cell struct {
	// Line is the line number of the magic in the notebook.
	Line  int
	Magic string
	Args  string
	// IsCell is set for %% magics, whose Body follows the magic line.
	IsCell bool
	Body   string
}

func (c Cell) String() string {
	prefix := "%"
	if c.IsCell {
		prefix = "%%"
	}
	return strings.TrimSpace(prefix + c.Magic + " " + c.Args)
}

// ReadFile reads the cells of the notebook file name.
func ReadFile(name string) ([]Cell, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open notebook %s: %w", name, err)
	}
	defer f.Close()
	return ReadCells(f)
}

// ReadCells reads a notebook. A line starting with %% opens a cell whose
// body runs up to the next line starting with %. A line starting with a
// single % is a one line magic. Outside of cells, blank lines and lines
// starting with # are ignored.
func ReadCells(r io.Reader) ([]Cell, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cells []Cell
		cell  *Cell
		body  []string
	)
	finish := func() {
		if cell == nil {
			return
		}
		cell.Body = strings.TrimRight(strings.Join(body, "\n"), " \t\r\n")
		cells = append(cells, *cell)
		cell, body = nil, nil
	}

	lineIter := 0
	for scanner.Scan() {
		text := scanner.Text()
		lineIter++

		switch {
		case strings.HasPrefix(text, "%"):
			finish()
			c, err := parseMagicLine(text, lineIter)
			if err != nil {
				return nil, err
			}
			if c.IsCell {
				cell = &c
				continue
			}
			cells = append(cells, c)
		case cell != nil:
			body = append(body, text)
		case strings.TrimSpace(text) == "", strings.HasPrefix(strings.TrimSpace(text), "#"):
		default:
			return nil, fmt.Errorf("error on line %d: text outside of a magic: %q", lineIter, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning error on line %d: %w", lineIter, err)
	}
	finish()
	return cells, nil
}

func parseMagicLine(text string, line int) (Cell, error) {
	c := Cell{Line: line}
	if strings.HasPrefix(text, "%%") {
		c.IsCell = true
		text = text[2:]
	} else {
		text = text[1:]
	}

	name, args, _ := strings.Cut(text, " ")
	c.Magic, c.Args = strings.TrimSpace(name), strings.TrimSpace(args)
	switch c.Magic {
	case MagicRest, MagicRestRoot:
	case MagicRestSession:
		if c.IsCell {
			return c, fmt.Errorf("error on line %d: %%%s is a line magic", line, c.Magic)
		}
	default:
		return c, fmt.Errorf("error on line %d: unknown magic %q", line, c.Magic)
	}
	return c, nil
}

// Exec runs a single cell.
func (m *Magic) Exec(ctx context.Context, c Cell) error {
	switch c.Magic {
	case MagicRest:
		_, err := m.Rest(ctx, c.Args, c.Body)
		return err
	case MagicRestRoot:
		return m.RestRoot(c.Args, c.Body)
	case MagicRestSession:
		return m.RestSession(c.Args)
	}
	return fmt.Errorf("unknown magic %q", c.Magic)
}

// Run executes cells in order. A failing cell does not stop the run, the
// errors of all failed cells are returned together. The session is closed
// at the end.
func (m *Magic) Run(ctx context.Context, cells []Cell) error {
	var rErr *multierror.Error
	for _, c := range cells {
		if err := ctx.Err(); err != nil {
			rErr = multierror.Append(rErr, err)
			break
		}
		if err := m.Exec(ctx, c); err != nil {
			rErr = multierror.Append(rErr, errors.Wrapf(err, "line %d: %s", c.Line, c))
		}
	}
	if err := m.Close(); err != nil {
		rErr = multierror.Append(rErr, err)
	}
	return rErr.ErrorOrNil()
}
