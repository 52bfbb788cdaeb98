package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Open(ctx context.Context, example, previousID string) error
	Resolve(ctx context.Context, id string) error
	Upload(ctx context.Context, path string) error
}

// runREPL reads commands until EOF or "exit":
//
//	help                      show available commands
//	l | list                  list examples
//	open <example> [id]       open a session, optionally continuing id
//	resolve <id>              decode a shareable id
//	upload <path>             upload a document and open a session on it
//	exit | quit               leave the program
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("docshare %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, open <example> [id], resolve <id>, upload <path>, exit")

		case "l", "list":
			_ = a.List(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <example> [id]")
				continue
			}
			prev := ""
			if len(args) > 1 {
				prev = args[1]
			}
			_ = a.Open(ctx, args[0], prev)

		case "resolve":
			if len(args) != 1 {
				printlnFn("Usage: resolve <id>")
				continue
			}
			_ = a.Resolve(ctx, args[0])

		case "upload":
			if len(args) != 1 {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
