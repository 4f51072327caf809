package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	ExitKeyword string = "退出"

	Prompt string = "\n请输入您要查询的医学问题（输入'退出'结束查询）：\n> "
)

// Asker answers a single question.
type Asker interface {
	Query(ctx context.Context, question string) string
}

type Console struct {
	in  io.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  in,
		out: out,
	}
}

// Run reads questions until the exit keyword, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, asker Asker) error {
	scanner := bufio.NewScanner(c.in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, Prompt)

		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if IsExit(line) {
			return nil
		}

		fmt.Fprintf(c.out, "\n正在查询: %s\n", line)

		answer := asker.Query(ctx, line)

		fmt.Fprintf(c.out, "\nAI 回答：\n %s\n", answer)
	}
}

func IsExit(line string) bool {
	return strings.ToLower(strings.TrimSpace(line)) == ExitKeyword
}
