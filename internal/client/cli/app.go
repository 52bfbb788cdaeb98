// Package cli implements the interactive docshare client: it lists
// examples, opens viewer sessions and resolves shareable ids against a
// running server.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/docshare/internal/client/client"
	"github.com/dmitrijs2005/docshare/internal/client/config"
)

// API is the subset of the docshare server the CLI talks to.
type API interface {
	Examples(ctx context.Context) ([]client.Example, error)
	OpenExample(ctx context.Context, example, previousID string) (*client.Session, error)
	Resolve(ctx context.Context, id string) (*client.ShareableID, error)
	Upload(ctx context.Context, path string) (*client.Session, error)
}

type App struct {
	config *config.Config
	api    API
	// last shareable id per example, replayed on the next open like a
	// browser would from local storage
	lastIDs map[string]string
}

func NewApp(c *config.Config) (*App, error) {
	api := client.NewDocshareClient(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})
	return newApp(c, api), nil
}

func newApp(c *config.Config, api API) *App {
	return &App{config: c, api: api, lastIDs: make(map[string]string)}
}

func (a *App) Run(ctx context.Context) {
	printlnFn("docshare CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) status() string {
	return a.config.ServerURL
}

func (a *App) List(ctx context.Context) error {
	list, err := a.api.Examples(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	for _, e := range list {
		printlnFn(fmt.Sprintf("%-20s %-6s %s", e.Name, e.Fingerprint, e.Title))
	}
	return nil
}

// Open starts a session on example. Without an explicit previous id the
// id from the last successful open of the same example is reused.
func (a *App) Open(ctx context.Context, example, previousID string) error {
	if previousID == "" {
		previousID = a.lastIDs[example]
	}

	s, err := a.api.OpenExample(ctx, example, previousID)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	a.lastIDs[example] = s.ID

	printSession(s)
	return nil
}

func (a *App) Resolve(ctx context.Context, id string) error {
	r, err := a.api.Resolve(ctx, id)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	printlnFn("document:", r.DocumentID)
	printlnFn("layer:   ", r.Layer)
	if r.Fingerprint == "" {
		printlnFn("custom document")
		return nil
	}
	for _, e := range r.Examples {
		printlnFn("example: ", e.Name)
	}
	return nil
}

func (a *App) Upload(ctx context.Context, path string) error {
	s, err := a.api.Upload(ctx, path)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printSession(s)
	return nil
}

func printSession(s *client.Session) {
	printlnFn("id:      ", s.ID)
	printlnFn("document:", s.DocumentID)
	printlnFn("jwt:     ", s.JWT)
	if s.AssistantJWT != "" {
		printlnFn("assistant jwt:", s.AssistantJWT)
	}
}
