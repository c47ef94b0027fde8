package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/membership/internal/engine/service"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(ctx context.Context, e *env) error {
			if err := e.repos.AutoMigrate(ctx); err != nil {
				return err
			}
			fmt.Println("schema migrated")
			return nil
		})
	},
}

var renewDate string

var renewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Run the renewal sweep once",
	Long:  "Extend active memberships whose end date has passed and invoice the next period",
	RunE: func(cmd *cobra.Command, args []string) error {
		today := time.Now()
		if renewDate != "" {
			d, err := time.ParseInLocation(time.DateOnly, renewDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", renewDate, err)
			}
			today = d
		}
		return withEnv(func(ctx context.Context, e *env) error {
			report, err := e.services.Renewal.RunDueRenewals(ctx, today)
			if err != nil {
				return err
			}
			return printJSON(report)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <membership-id>",
	Short: "Print a membership and its effect log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(ctx context.Context, e *env) error {
			m, err := e.services.Records.Get(ctx, args[0])
			if err != nil {
				return err
			}
			effects, err := e.services.Lifecycle.Effects(ctx, m.MembershipId)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"membership": m, "effects": effects})
		})
	},
}

var createStaffCmd = &cobra.Command{
	Use:   "create-staff <login> <password>",
	Short: "Create a staff account for the admin API",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(ctx context.Context, e *env) error {
			account, err := e.services.Accounts.CreateStaff(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(account)
		})
	},
}

type lifecycleFunc func(ctx context.Context, actor service.Actor, membershipId string) (service.Outcome, error)

// lifecycleCmds 每个状态操作对应一个子命令, 以 system 身份执行
func lifecycleCmds() []*cobra.Command {
	ops := []struct {
		use, short string
		pick       func(*service.LifecycleService) lifecycleFunc
	}{
		{"approve", "Approve a draft membership", func(l *service.LifecycleService) lifecycleFunc { return l.Approve }},
		{"reject", "Reject a membership", func(l *service.LifecycleService) lifecycleFunc { return l.Reject }},
		{"invoice", "Create the membership invoice", func(l *service.LifecycleService) lifecycleFunc { return l.CreateInvoice }},
		{"check-payment", "Activate when the linked invoice is paid", func(l *service.LifecycleService) lifecycleFunc { return l.CheckPayment }},
		{"activate", "Activate an approved or paid membership", func(l *service.LifecycleService) lifecycleFunc { return l.Activate }},
		{"expire", "Expire a membership", func(l *service.LifecycleService) lifecycleFunc { return l.Expire }},
	}

	cmds := make([]*cobra.Command, 0, len(ops))
	for _, op := range ops {
		cmds = append(cmds, &cobra.Command{
			Use:   op.use + " <membership-id>",
			Short: op.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(func(ctx context.Context, e *env) error {
					out, err := op.pick(e.services.Lifecycle)(ctx, service.SystemActor, args[0])
					if err != nil {
						return err
					}
					return printResult(ctx, e, args[0], out)
				})
			},
		})
	}
	return cmds
}

var markPaidReference string

var markPaidCmd = &cobra.Command{
	Use:   "mark-paid <membership-id>",
	Short: "Register the outstanding amount as paid and activate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(ctx context.Context, e *env) error {
			out, err := e.services.Lifecycle.MarkPaid(ctx, service.SystemActor, args[0], markPaidReference)
			if err != nil {
				return err
			}
			return printResult(ctx, e, args[0], out)
		})
	},
}

func init() {
	renewCmd.Flags().StringVar(&renewDate, "date", "", "sweep date, YYYY-MM-DD (default today)")
	markPaidCmd.Flags().StringVar(&markPaidReference, "reference", "", "payment reference, e.g. receipt number")
}

func printResult(ctx context.Context, e *env, membershipId string, out service.Outcome) error {
	m, err := e.services.Records.Get(ctx, membershipId)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"outcome":  out,
		"sequence": m.Sequence,
		"state":    m.State,
	})
}
