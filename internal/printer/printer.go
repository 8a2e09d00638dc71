// Package printer exposes task creation through the receipt printer
// contract of the point of sale. Every operation returns a PrintResult
// and reports its outcome through a notifier.
package printer

import (
	"context"
	"errors"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
	"pos-taskbridge/internal/normalize"
	"pos-taskbridge/internal/notify"
	"pos-taskbridge/internal/transport"
)

// Receipt is what the point of sale hands to a printer: structured receipt
// data, rendered markup, or both
type Receipt struct {
	Data   normalize.Record
	Markup string
}

// Session supplies the live state of the point of sale. Both methods may
// return nil.
type Session interface {
	CurrentOrder() normalize.Record
	Cashier() normalize.Record
}

// Config of a project printer
type Config struct {
	ProjectRef any
	Reprint    bool
}

// Deps are the collaborators of a printer
type Deps struct {
	Assembler *normalize.Assembler
	Submitter transport.Submitter
	Notifier  notify.Notifier
	Session   Session
	Printer   i18n.Printer
	Logger    *logger.Logger
}

// ProjectPrinter turns print jobs into preparation tasks
type ProjectPrinter struct {
	projectID  int64
	configured bool
	reprint    bool

	assembler *normalize.Assembler
	submitter transport.Submitter
	notifier  notify.Notifier
	session   Session
	tr        i18n.Printer
	logger    *logger.Logger
}

// New returns a printer for cfg. A project reference that does not resolve
// yields an unconfigured printer that refuses every job.
func New(ctx context.Context, cfg Config, deps Deps) *ProjectPrinter {
	p := &ProjectPrinter{
		reprint:   cfg.Reprint,
		assembler: deps.Assembler,
		submitter: deps.Submitter,
		notifier:  deps.Notifier,
		session:   deps.Session,
		tr:        deps.Printer,
		logger:    deps.Logger,
	}
	if p.tr == nil {
		p.tr = i18n.English()
	}
	if p.logger == nil {
		p.logger = logger.Discard()
	}
	if p.notifier == nil {
		p.notifier = notify.NewLogNotifier(p.logger)
	}
	if p.assembler == nil {
		p.assembler = normalize.NewAssembler(p.logger, p.tr)
	}

	id, err := normalize.ResolveProjectID(cfg.ProjectRef)
	if err != nil {
		p.logger.Error("printer_unconfigured", "Project printer has no usable project", "", err, map[string]any{
			"project_ref": cfg.ProjectRef,
		})
		p.notify(ctx, models.NoticeDanger, p.tr.Sprintf("The project printer has no project configured"))
		return p
	}

	p.projectID = id
	p.configured = true
	return p
}

// Configured reports whether the printer resolved its project
func (p *ProjectPrinter) Configured() bool {
	return p.configured
}

// PrintReceipt creates a preparation task for a customer receipt
func (p *ProjectPrinter) PrintReceipt(ctx context.Context, r Receipt) models.PrintResult {
	return p.createTask(ctx, "print_receipt", r)
}

// PrintPackingReceipt creates a preparation task for a packing receipt
func (p *ProjectPrinter) PrintPackingReceipt(ctx context.Context, r Receipt) models.PrintResult {
	return p.createTask(ctx, "print_packing_receipt", r)
}

// Print creates a preparation task for any other print job
func (p *ProjectPrinter) Print(ctx context.Context, r Receipt) models.PrintResult {
	return p.createTask(ctx, "print", r)
}

// PrintChanges submits a kitchen change receipt. A receipt whose changes
// list nothing new and nothing cancelled succeeds without a task.
func (p *ProjectPrinter) PrintChanges(ctx context.Context, r Receipt) models.PrintResult {
	if p.configured && !hasChanges(r.Data) {
		p.logger.Debug("print_changes", "No changes to send", "", nil)
		return models.PrintResult{Successful: true}
	}
	return p.createTask(ctx, "print_changes", r)
}

func (p *ProjectPrinter) createTask(ctx context.Context, action string, r Receipt) models.PrintResult {
	requestID := logger.GenerateRequestID()

	if !p.configured {
		msg := p.tr.Sprintf("Cannot print: the printer has no project configured")
		p.notify(ctx, models.NoticeDanger, msg)
		return p.failure(msg)
	}

	src := normalize.Source{
		Receipt: r.Data,
		Markup:  r.Markup,
		Reprint: p.reprint,
	}
	if p.session != nil {
		src.Order = p.session.CurrentOrder()
		src.Cashier = p.session.Cashier()
	}

	data, err := p.assembler.Assemble(p.projectID, src)
	if err != nil {
		p.logger.Error(action, "Failed to assemble order data", requestID, err, nil)
		msg := p.tr.Sprintf("Error processing the receipt: %v", err)
		p.notify(ctx, models.NoticeDanger, msg)
		return p.failure(msg)
	}

	fields := map[string]any{
		"project_id": data.ProjectID,
		"order_name": data.Name,
		"lines":      len(data.OrderLines),
		"reprint":    data.Reprint,
	}
	p.logger.Info(action, "Submitting preparation task", requestID, fields)

	res, err := p.submitter.CreatePreparationTask(ctx, data)
	if err != nil {
		p.logger.Error(action, "Failed to create preparation task", requestID, err, fields)
		p.notify(ctx, models.NoticeDanger, p.tr.Sprintf("Error creating reprint task"))
		return p.failure(p.tr.Sprintf("Error creating reprint task: %v", unwrapTransport(err)))
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = p.tr.Sprintf("Could not create the task in the project")
		}
		p.logger.Warn(action, "Task board rejected the preparation task", requestID, map[string]any{
			"order_name": data.Name,
			"message":    msg,
		})
		p.notify(ctx, models.NoticeWarning, msg)
		return p.failure(msg)
	}

	p.logger.Info(action, "Preparation task created", requestID, map[string]any{
		"order_name": data.Name,
		"task_id":    res.TaskID,
	})
	p.notify(ctx, models.NoticeSuccess, p.tr.Sprintf("Full reprint sent to project"))
	return models.PrintResult{Successful: true}
}

func (p *ProjectPrinter) failure(body string) models.PrintResult {
	return models.PrintResult{
		Successful: false,
		Message:    &models.PrintMessage{Title: p.tr.Sprintf("Print error"), Body: body},
	}
}

func (p *ProjectPrinter) notify(ctx context.Context, level models.NoticeLevel, msg string) {
	p.notifier.Notify(ctx, notify.Notice{Level: level, Message: msg})
}

// hasChanges is false only for a receipt carrying a changes object with
// empty new and cancelled lists
func hasChanges(data normalize.Record) bool {
	if data == nil {
		return true
	}
	v, ok := data.Field("changes")
	if !ok || v == nil {
		return true
	}
	changes, ok := normalize.AsRecord(v)
	if !ok {
		return true
	}
	return listLen(changes, "new") > 0 || listLen(changes, "cancelled") > 0
}

func listLen(rec normalize.Record, name string) int {
	v, _ := rec.Field(name)
	switch l := v.(type) {
	case []any:
		return len(l)
	case []map[string]any:
		return len(l)
	case []normalize.Record:
		return len(l)
	}
	return 0
}

func unwrapTransport(err error) error {
	var terr *models.TransportError
	if errors.As(err, &terr) && terr.Err != nil {
		return terr.Err
	}
	return err
}
