package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"sukiism/internal/infra"
	"sukiism/internal/model"
	"sukiism/internal/service"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// ── workbook ─────────────────────────────────────────────────────────────────

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the item, transaction and retired-code sheets" }
func (*initCmd) Usage() string {
	return `stockctl init

  Writes header rows to any missing sheet. Existing sheets are left alone.
`
}
func (*initCmd) SetFlags(*flag.FlagSet) {}

func (*initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		if err := a.itemRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := a.txRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		if a.cfg.StoreDriver == "gsheets" {
			fmt.Printf("Spreadsheet %s is ready\n", a.cfg.GoogleSheetID)
		} else {
			fmt.Printf("Workbook %s is ready\n", a.cfg.WorkbookPath)
		}
		return nil
	})
}

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "print stock totals and the restock count" }
func (*dashboardCmd) Usage() string    { return "stockctl dashboard\n" }
func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (*dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		d, err := a.items.Dashboard(ctx)
		if err != nil {
			return err
		}
		printMarkdown(fmt.Sprintf("# Dashboard\n\n- Items: **%d**\n- Needing restock: **%d**\n- Stock value: **%s**\n- Movements today: **%d**\n",
			d.ItemCount, d.RestockCount, infra.FormatMoney(d.TotalValue, a.cfg.Currency), d.TodayTransactions))
		return nil
	})
}

// ── items ────────────────────────────────────────────────────────────────────

type itemsCmd struct{}

func (*itemsCmd) Name() string     { return "items" }
func (*itemsCmd) Synopsis() string { return "list all items with their current stock" }
func (*itemsCmd) Usage() string    { return "stockctl items\n" }
func (*itemsCmd) SetFlags(*flag.FlagSet) {}

func (*itemsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		items, err := a.items.List(ctx)
		if err != nil {
			return err
		}
		printMarkdown(itemsMarkdown(items, a.cfg.Currency))
		return nil
	})
}

type addCmd struct {
	name      string
	category  string
	unit      string
	price     string
	minStock  string
	quantity  string
	shelfLife int
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an item and allocate its code" }
func (*addCmd) Usage() string {
	return `stockctl add -name <name> -category <category> -unit <unit> [-price <p>] [-min <m>] [-qty <q>] [-shelf <days>]

  Allocates the next code for the category and appends the item. A positive
  -qty is recorded as an approved incoming movement.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Item name.")
	f.StringVar(&c.category, "category", "", "Category; unknown categories get the OT prefix.")
	f.StringVar(&c.unit, "unit", "", "Counting unit (kg, pack, ...).")
	f.StringVar(&c.price, "price", "0", "Unit price.")
	f.StringVar(&c.minStock, "min", "0", "Minimum stock before restocking.")
	f.StringVar(&c.quantity, "qty", "0", "Opening quantity.")
	f.IntVar(&c.shelfLife, "shelf", 0, "Shelf life in days.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var in service.AddItemInput
	var err error
	if in.UnitPrice, err = decimal.NewFromString(c.price); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -price: %v\n", err)
		return subcommands.ExitUsageError
	}
	if in.MinStock, err = decimal.NewFromString(c.minStock); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -min: %v\n", err)
		return subcommands.ExitUsageError
	}
	if in.Quantity, err = decimal.NewFromString(c.quantity); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -qty: %v\n", err)
		return subcommands.ExitUsageError
	}
	in.Name, in.Category, in.Unit, in.ShelfLifeDays = c.name, c.category, c.unit, c.shelfLife

	return withApp(func(a *app) error {
		code, err := a.items.Add(ctx, in, *actor)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s\n", code)
		return nil
	})
}

type allocateCmd struct{ category string }

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "show the next free code for a category without reserving it" }
func (*allocateCmd) Usage() string    { return "stockctl allocate -category <category>\n" }
func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Category to allocate for.")
}

func (c *allocateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		code, err := a.ledger.AllocateCode(ctx, c.category)
		if err != nil {
			return err
		}
		fmt.Println(code)
		return nil
	})
}

type recomputeCmd struct{}

func (*recomputeCmd) Name() string     { return "recompute" }
func (*recomputeCmd) Synopsis() string { return "rebuild stock columns from the ledger" }
func (*recomputeCmd) Usage() string {
	return `stockctl recompute [<code>...]

  Recomputes the given items, or every item when no code is given.
`
}
func (*recomputeCmd) SetFlags(*flag.FlagSet) {}

func (*recomputeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		codes := f.Args()
		if len(codes) == 0 {
			items, err := a.items.List(ctx)
			if err != nil {
				return err
			}
			for _, it := range items {
				codes = append(codes, it.Code)
			}
		}
		for _, code := range codes {
			rc, err := a.ledger.Recompute(ctx, code)
			if err != nil {
				return fmt.Errorf("%s: %w", code, err)
			}
			if rc == nil {
				fmt.Printf("%s: no such item\n", code)
				continue
			}
			fmt.Printf("%s: %s %s (%s)\n", code, rc.Item.Quantity, rc.Item.Unit, rc.Item.Status)
		}
		return nil
	})
}

type restockCmd struct{ pdf string }

func (*restockCmd) Name() string     { return "restock" }
func (*restockCmd) Synopsis() string { return "list items below their minimum stock" }
func (*restockCmd) Usage() string    { return "stockctl restock [-pdf <file>]\n" }
func (c *restockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pdf, "pdf", "", "Also write the list as a PDF to this file.")
}

func (c *restockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		entries, err := a.ledger.RestockReport(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		printMarkdown(restockMarkdown(entries, a.cfg.Currency, now))
		if c.pdf == "" {
			return nil
		}
		data, err := infra.GenerateRestockPDF(entries, a.cfg.Currency, now)
		if err != nil {
			return err
		}
		return os.WriteFile(c.pdf, data, 0o644)
	})
}

// ── transactions ─────────────────────────────────────────────────────────────

type recordCmd struct {
	shelfLife int
	pending   bool
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record an incoming or outgoing movement" }
func (*recordCmd) Usage() string {
	return `stockctl record [-shelf <days>] [-pending] <code> <in|out> <quantity>

  Appends a ledger row and recomputes the item. Outgoing movements larger than
  the current stock are rejected.
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.shelfLife, "shelf", 0, "Shelf life in days, used for the expiry date.")
	f.BoolVar(&c.pending, "pending", false, "Record the movement unapproved.")
}

func (c *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	qty, err := decimal.NewFromString(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withApp(func(a *app) error {
		res, err := a.txs.Record(ctx, service.RecordInput{
			ItemCode:      f.Arg(0),
			Type:          f.Arg(1),
			Quantity:      qty,
			ShelfLifeDays: c.shelfLife,
			Requester:     *actor,
			Approved:      !c.pending,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %s on row %d\n", res.Order, res.Row)
		if res.Item != nil {
			fmt.Printf("%s now at %s %s (%s)\n", res.Item.Code, res.Item.Quantity, res.Item.Unit, res.Item.Status)
		}
		return nil
	})
}

type approveCmd struct{}

func (*approveCmd) Name() string     { return "approve" }
func (*approveCmd) Synopsis() string { return "approve a pending ledger row" }
func (*approveCmd) Usage() string    { return "stockctl approve <row>\n" }
func (*approveCmd) SetFlags(*flag.FlagSet) {}

func (c *approveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	row, err := strconv.Atoi(f.Arg(0))
	if f.NArg() != 1 || err != nil {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return withApp(func(a *app) error {
		it, err := a.txs.Approve(ctx, row, *actor)
		if err != nil {
			return err
		}
		if it != nil {
			fmt.Printf("%s now at %s %s (%s)\n", it.Code, it.Quantity, it.Unit, it.Status)
		}
		return nil
	})
}

type txCmd struct {
	date     string
	typ      string
	itemCode string
	today    bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list ledger rows" }
func (*txCmd) Usage() string {
	return `stockctl tx [-today | -d <dd/mm/yy>] [-type <in|out>] [-item <code>]
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Only rows recorded on this date (dd/mm/yy).")
	f.BoolVar(&c.today, "today", false, "Only rows recorded today.")
	f.StringVar(&c.typ, "type", "", "Only in or out movements.")
	f.StringVar(&c.itemCode, "item", "", "Only rows for this item code.")
}

func (c *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := service.TransactionFilter{Date: c.date, Type: c.typ, ItemCode: c.itemCode}
	if c.today {
		filter.Date = time.Now().Format(model.DateLayout)
	}
	return withApp(func(a *app) error {
		txs, err := a.txs.List(ctx, filter)
		if err != nil {
			return err
		}
		printMarkdown(transactionsMarkdown(txs))
		return nil
	})
}
