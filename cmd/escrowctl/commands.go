package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/chris/order-escrow/pkg/app"
	"github.com/chris/order-escrow/pkg/config"
	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/chris/order-escrow/pkg/middleware"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/spf13/cobra"
)

// opener builds the runtime for one command invocation.
type opener func(ctx context.Context, configPath string) (*app.Runtime, error)

type cli struct {
	open       opener
	out        io.Writer
	configPath string
	operator   string
}

func newRootCmd(open opener, out io.Writer) *cobra.Command {
	c := &cli{open: open, out: out}

	root := &cobra.Command{
		Use:           "escrowctl",
		Short:         "Operate order escrows",
		Long:          "escrowctl inspects escrows and runs operator actions against the configured storage backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.operator, "operator", "escrowctl", "operator id recorded on actions")

	root.AddCommand(
		c.sweepCmd(),
		c.getCmd(),
		c.listCmd(),
		c.releaseCmd(),
		c.refundCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) actor() escrow.Actor {
	return escrow.Actor{ID: c.operator, Role: escrow.RoleAdmin}
}

func (c *cli) withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := c.open(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) sweepCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:     "sweep",
		Aliases: []string{"recover"},
		Short:   "Release every escrow whose auto-release is overdue",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().UTC()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				result, err := rt.Sweeper().Sweep(ctx, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "found=%d released=%d skipped=%d failed=%d\n", result.Found, result.Released, result.Skipped, result.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "sweep as of this RFC3339 time instead of now")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <escrow-id>",
		Short: "Show one escrow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				e, err := rt.Service.GetEscrow(ctx, c.actor(), args[0])
				if err != nil {
					return err
				}
				return c.print(e)
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var f struct {
		merchant, status, method string
		offset, limit            int
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List escrows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				page, err := rt.Service.ListEscrows(ctx, c.actor(), escrow.Filter{
					MerchantID:    f.merchant,
					Status:        models.EscrowStatus(f.status),
					PaymentMethod: models.PaymentMethod(f.method),
				}, escrow.PageRequest{Offset: f.offset, Limit: f.limit})
				if err != nil {
					return err
				}
				return c.print(page)
			})
		},
	}
	cmd.Flags().StringVar(&f.merchant, "merchant", "", "merchant id")
	cmd.Flags().StringVar(&f.status, "status", "", "escrow status")
	cmd.Flags().StringVar(&f.method, "method", "", "payment method")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "page offset")
	cmd.Flags().IntVar(&f.limit, "limit", escrow.DefaultPageLimit, "page size")
	return cmd
}

func (c *cli) releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release <escrow-id>",
		Short: "Release an escrow to the merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				e, err := rt.Service.ReleaseEscrow(ctx, c.actor(), args[0])
				if err != nil {
					return err
				}
				return c.print(e)
			})
		},
	}
}

func (c *cli) refundCmd() *cobra.Command {
	var reason string
	var amount int64
	cmd := &cobra.Command{
		Use:   "refund <escrow-id>",
		Short: "Refund an escrow to the buyer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := escrow.RefundInput{Reason: reason}
			if cmd.Flags().Changed("amount") {
				in.Amount = &amount
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				e, err := rt.Service.RefundEscrow(ctx, c.actor(), args[0], in)
				if err != nil {
					return err
				}
				return c.print(e)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "refund reason")
	cmd.Flags().Int64Var(&amount, "amount", 0, "partial refund amount in minor units (default: full)")
	return cmd
}

func (c *cli) tokenCmd() *cobra.Command {
	var subject, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			switch escrow.Role(role) {
			case escrow.RoleMerchant, escrow.RoleAdmin, escrow.RoleSystem:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := middleware.NewToken([]byte(cfg.JWTSecret), escrow.Actor{ID: subject, Role: escrow.Role(role)}, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "actor id")
	cmd.Flags().StringVar(&role, "role", string(escrow.RoleMerchant), "merchant, admin or system")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
