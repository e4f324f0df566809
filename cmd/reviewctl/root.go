package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/reviewsense/internal/config"
	"github.com/gonkalabs/reviewsense/internal/gatewayclient"
)

type commandContext struct {
	gatewayFlag string
	timeoutFlag time.Duration
}

// client resolves the gateway address from flags, then GATEWAY_ADDRESS / IP_ADDRESS.
func (c *commandContext) client() (*gatewayclient.Client, error) {
	addr, timeout := c.gatewayFlag, c.timeoutFlag
	if addr == "" || timeout == 0 {
		cfg, err := config.LoadFrontend()
		if err != nil {
			return nil, err
		}
		if addr == "" {
			addr = cfg.GatewayAddr
		}
		if timeout == 0 {
			timeout = cfg.Timeout
		}
	}
	return gatewayclient.New(addr, timeout), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Classify movie reviews against a reviewsense gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.gatewayFlag, "gateway", "g", "", "Gateway address (host:port or URL)")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeoutFlag, "timeout", 0, "Request timeout")

	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newPingCommand(ctx))
	rootCmd.AddCommand(newEvalCommand(ctx))

	return rootCmd
}
