package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pos-taskbridge/internal/config"
	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/messaging"
	"pos-taskbridge/internal/normalize"
	"pos-taskbridge/internal/notify"
	"pos-taskbridge/internal/printer"
	"pos-taskbridge/internal/transport"
)

// Print operations accepted by the print command
const (
	opReceipt = "receipt"
	opPacking = "packing"
	opChanges = "changes"
	opPrint   = "print"
)

// inputs is what the point of sale would hand over, read from files.
// Markup files end in .html or .htm; JSON objects with orderlines or
// changes are receipt data; any other JSON object is the live order.
type inputs struct {
	order   normalize.Record
	receipt normalize.Record
	markup  string
	cashier normalize.Record
}

func (in *inputs) CurrentOrder() normalize.Record { return in.order }
func (in *inputs) Cashier() normalize.Record      { return in.cashier }

func readInputs(paths []string, cashier string) (*inputs, error) {
	in := &inputs{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := in.add(path, data); err != nil {
			return nil, err
		}
	}
	if cashier != "" {
		in.cashier = normalize.NewObject(map[string]any{"name": cashier})
	}
	return in, nil
}

func (in *inputs) add(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		in.markup = string(data)
		return nil
	}

	rec, err := normalize.DecodeRecord(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if isReceiptData(rec) {
		in.receipt = rec
	} else {
		in.order = rec
	}
	return nil
}

func isReceiptData(rec normalize.Record) bool {
	for _, name := range []string{"orderlines", "changes"} {
		if _, ok := rec.Field(name); ok {
			return true
		}
	}
	return false
}

func (in *inputs) source(reprint bool) normalize.Source {
	return normalize.Source{
		Order:   in.order,
		Receipt: in.receipt,
		Markup:  in.markup,
		Cashier: in.cashier,
		Reprint: reprint,
	}
}

type localOptions struct {
	project string
	cashier string
	reprint bool
}

func (o *localOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.project, "project", "", "Project id, overrides the configured one")
	cmd.Flags().StringVar(&o.cashier, "cashier", "", "Name of the session cashier")
	cmd.Flags().BoolVar(&o.reprint, "reprint", false, "Mark the task as a reprint")
}

func (o *localOptions) projectRef(cmd *cobra.Command, cfg *config.Config) any {
	if cmd.Flags().Changed("project") {
		return o.project
	}
	return cfg.Integration.ProjectID
}

func (o *localOptions) reprintFlag(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("reprint") {
		return o.reprint
	}
	return cfg.Integration.Reprint
}

func newNormalizeCommand(opts *globalOptions) *cobra.Command {
	local := &localOptions{}
	cmd := &cobra.Command{
		Use:   "normalize FILE...",
		Short: "Print the task payload built from order, receipt and markup files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load("normalize", true)
			if err != nil {
				return err
			}
			in, err := readInputs(args, local.cashier)
			if err != nil {
				return err
			}

			assembler := normalize.NewAssembler(log, i18n.NewPrinter(cfg.Integration.Locale))
			data, err := assembler.Assemble(local.projectRef(cmd, cfg), in.source(local.reprintFlag(cmd, cfg)))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
	local.bind(cmd)
	return cmd
}

func newPrintCommand(opts *globalOptions) *cobra.Command {
	local := &localOptions{}
	var op string
	cmd := &cobra.Command{
		Use:   "print FILE...",
		Short: "Send a print job to the project printer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load("print", true)
			if err != nil {
				return err
			}
			in, err := readInputs(args, local.cashier)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, cleanup, err := newDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()
			deps.Session = in

			p := printer.New(ctx, printer.Config{
				ProjectRef: local.projectRef(cmd, cfg),
				Reprint:    local.reprintFlag(cmd, cfg),
			}, deps)

			receipt := printer.Receipt{Data: in.receipt, Markup: in.markup}
			var result any
			switch op {
			case opReceipt:
				result = p.PrintReceipt(ctx, receipt)
			case opPacking:
				result = p.PrintPackingReceipt(ctx, receipt)
			case opChanges:
				result = p.PrintChanges(ctx, receipt)
			case opPrint:
				result = p.Print(ctx, receipt)
			default:
				return fmt.Errorf("unknown print operation: %s", op)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	local.bind(cmd)
	cmd.Flags().StringVar(&op, "op", opReceipt, "Print operation: receipt, packing, changes or print")
	return cmd
}

func newCreateTaskCommand(opts *globalOptions) *cobra.Command {
	local := &localOptions{}
	var validated bool
	cmd := &cobra.Command{
		Use:   "create-task ORDER_FILE",
		Short: "Create a project task for a saved order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load("create-task", true)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			order, err := normalize.DecodeRecord(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, cleanup, err := newDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			creator := printer.NewTaskCreator(printer.CreatorConfig{
				Enabled:    cfg.Integration.Enabled,
				ProjectRef: local.projectRef(cmd, cfg),
			}, deps)

			if validated {
				creator.OrderValidated(ctx, order)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), creator.CreateTask(ctx, order))
		},
	}
	cmd.Flags().StringVar(&local.project, "project", "", "Project id, overrides the configured one")
	cmd.Flags().BoolVar(&validated, "validated", false, "Run the order validation hook instead of the explicit action")
	return cmd
}

// newDeps wires the configured transport. Queue transport also broadcasts
// notices to notification subscribers.
func newDeps(ctx context.Context, cfg *config.Config, log *logger.Logger) (printer.Deps, func(), error) {
	tr := i18n.NewPrinter(cfg.Integration.Locale)
	deps := printer.Deps{
		Assembler: normalize.NewAssembler(log, tr),
		Printer:   tr,
		Logger:    log,
	}

	if cfg.Transport.Kind != config.TransportQueue {
		deps.Submitter = transport.NewHTTPSubmitter(cfg.Transport.BaseURL, cfg.Transport.Timeout, log)
		deps.Notifier = notify.NewLogNotifier(log)
		return deps, func() {}, nil
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return deps, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	publisher := messaging.NewPublisher(conn, log)
	deps.Submitter = transport.NewQueueSubmitter(publisher, log)
	deps.Notifier = notify.Multi{
		notify.NewLogNotifier(log),
		notify.NewBroadcastNotifier(publisher, serviceName, log),
	}
	return deps, func() { conn.Close() }, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
