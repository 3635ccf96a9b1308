package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/pkg/spreadsheet"
)

type opener func(ctx context.Context) (*gorm.DB, func() error, error)

type rootOptions struct {
	Out string
}

func newRootCommand(open opener) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "storeshop-export",
		Short: "Export recorded orders from the event log",
		Long: `Export the bestellungen event log as CSV or xlsx, pivot it into the
wide store x SAP matrix, or dump the order_logs audit table.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.Out, "out", "o", "-", "output file, - for stdout")

	cmd.AddCommand(
		newOrdersCommand(open, opts, "csv", "Export every order as CSV", orders.WriteCSV),
		newOrdersCommand(open, opts, "xlsx", "Export every order as an xlsx workbook", orders.WriteXLSX),
		newMatrixCommand(open, opts),
		newAuditCommand(open, opts),
	)
	return cmd
}

func newOrdersCommand(open opener, opts *rootOptions, use, short string, encode func(io.Writer, []orders.Order) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), open, func(gdb *gorm.DB) error {
				list, err := orders.NewEventLogSink(gdb).List(cmd.Context())
				if err != nil {
					return err
				}
				return writeOutput(cmd, opts.Out, func(w io.Writer) error {
					return encode(w, list)
				})
			})
		},
	}
}

func newMatrixCommand(open opener, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Pivot the latest quantity per store and SAP number into a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), open, func(gdb *gorm.DB) error {
				cells, err := orders.NewEventLogSink(gdb).Latest(cmd.Context())
				if err != nil {
					return err
				}
				header, rows := orders.MatrixTable(cells)
				if opts.Out != "-" {
					return spreadsheet.WriteFile(opts.Out, header, rows)
				}
				return spreadsheet.Encode(cmd.OutOrStdout(), header, rows)
			})
		},
	}
}

func newAuditCommand(open opener, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Dump the order_logs audit table as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), open, func(gdb *gorm.DB) error {
				entries, err := orders.NewDBAudit(gdb).Entries(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, e.Row())
				}
				if opts.Out != "-" {
					return spreadsheet.WriteFile(opts.Out, orders.AuditHeader, rows)
				}
				return spreadsheet.Encode(cmd.OutOrStdout(), orders.AuditHeader, rows)
			})
		},
	}
}

func withDB(ctx context.Context, open opener, fn func(*gorm.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gdb, closeFn, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if closeFn != nil {
		defer func() { _ = closeFn() }()
	}
	return fn(gdb)
}

func writeOutput(cmd *cobra.Command, out string, write func(io.Writer) error) error {
	if out == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
