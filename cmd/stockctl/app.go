package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"sukiism/internal/cache"
	"sukiism/internal/config"
	"sukiism/internal/repository"
	"sukiism/internal/service"
	"sukiism/internal/sheet"
	"sukiism/internal/worker"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "workbook")
	c.Register(&dashboardCmd{}, "workbook")

	c.Register(&itemsCmd{}, "items")
	c.Register(&addCmd{}, "items")
	c.Register(&allocateCmd{}, "items")
	c.Register(&recomputeCmd{}, "items")
	c.Register(&restockCmd{}, "items")

	c.Register(&recordCmd{}, "transactions")
	c.Register(&approveCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
}

// A CLI run is short lived, so global flags are fine.
var (
	workbookPath = flag.String("workbook", "", "Path to the stock workbook. Defaults to WORKBOOK_PATH.")
	actor        = flag.String("as", os.Getenv("USER"), "Name recorded as requester and in the audit log.")
	verbose      = flag.Bool("v", false, "Log store activity to stderr.")
)

// app holds the services bound to one opened workbook.
type app struct {
	cfg    *config.Config
	store  repository.Backend
	items  service.ItemService
	txs    service.TransactionService
	ledger service.LedgerService

	itemRepo repository.ItemRepository
	txRepo   repository.TransactionRepository
}

// openApp opens the workbook and wires the services the way the server does,
// minus the database: audit entries are only logged and restock alerts are
// printed instead of mailed.
func openApp() (*app, error) {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *workbookPath != "" {
		cfg.WorkbookPath = *workbookPath
		cfg.StoreDriver = "workbook"
	}
	backend, err := repository.OpenStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	store := sheet.NewResilient(backend, sheet.RetryPolicy{
		Attempts:  cfg.StoreRetryAttempts,
		BaseDelay: cfg.StoreRetryDelay,
	}, nil)
	c := cache.NewMemory(0)
	itemRepo := repository.NewItemRepository(store, c, cfg.ItemsSheet, cfg.RetiredSheet)
	txRepo := repository.NewTransactionRepository(store, c, cfg.TransactionsSheet)

	auditor := service.NewAuditor(nil)
	notifier := worker.NewInline(worker.NewRestockAlertWorker(nil, "", cfg.Currency))
	ledger := service.NewLedgerService(itemRepo, txRepo, notifier)
	txs := service.NewTransactionService(itemRepo, txRepo, ledger, auditor)
	items := service.NewItemService(itemRepo, txRepo, ledger, txs, auditor)

	return &app{
		cfg: cfg, store: backend, items: items, txs: txs, ledger: ledger,
		itemRepo: itemRepo, txRepo: txRepo,
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

// withApp runs fn against a freshly opened workbook and maps errors to an
// exit status.
func withApp(fn func(*app) error) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if err := fn(a); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
