// a2actl is a small operator CLI for the gateway: send a message, fetch
// the agent card, or inspect the plugin registries.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/universal-a2a/gateway/pkg/client"
)

type cliContext struct {
	client  *client.Client
	timeout time.Duration
}

type pingCmd struct {
	Text string `arg:"" optional:"" default:"ping" help:"Text to send."`
	RPC  bool   `help:"Use the JSON-RPC surface instead of raw A2A."`
}

func (c *pingCmd) Run(cctx *cliContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), cctx.timeout)
	defer cancel()

	var (
		reply string
		err   error
	)
	if c.RPC {
		reply, err = cctx.client.SendRPC(ctx, c.Text)
	} else {
		reply, err = cctx.client.Send(ctx, c.Text)
	}
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

type cardCmd struct{}

func (c *cardCmd) Run(cctx *cliContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), cctx.timeout)
	defer cancel()

	raw, err := cctx.client.Card(ctx)
	if err != nil {
		return err
	}
	return printJSON(raw)
}

type registryCmd struct{}

func (c *registryCmd) Run(cctx *cliContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), cctx.timeout)
	defer cancel()

	raw, err := cctx.client.Registry(ctx)
	if err != nil {
		return err
	}
	return printJSON(raw)
}

func printJSON(raw json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return err
	}
	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var cli struct {
	URL     string        `default:"http://localhost:8000" env:"A2A_URL" help:"Gateway base URL."`
	Timeout time.Duration `default:"30s" help:"Request timeout."`

	Ping     pingCmd     `cmd:"" help:"Send a message and print the reply."`
	Card     cardCmd     `cmd:"" help:"Fetch the agent card."`
	Registry registryCmd `cmd:"" help:"Inspect the provider and framework registries."`
}

func main() {
	_ = godotenv.Load()

	ctx := kong.Parse(&cli,
		kong.Name("a2actl"),
		kong.Description("Operator CLI for the A2A agent gateway."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cliContext{
		client:  client.New(cli.URL),
		timeout: cli.Timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "a2actl:", err)
		os.Exit(1)
	}
}
