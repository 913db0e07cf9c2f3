package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Address to listen on." default:":8080" env:"TWEEKLIKE_ADDR"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLocal("serve"); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %d tasks from %s on %s\n", len(ctx.Local.All()), ctx.Store.GetConfigPath(), c.Addr)
	return server.NewServer(ctx.Local).Run(sigCtx, c.Addr)
}
