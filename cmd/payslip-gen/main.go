package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"payslip/internal/domain/payslip"
	"payslip/internal/platform/config"
	cryptoutil "payslip/internal/platform/crypto"
	"payslip/internal/platform/render"
	"payslip/internal/platform/storage"
)

func main() {
	file := flag.String("file", "", "payroll table (.csv, .xlsx or .xls)")
	period := flag.String("period", "", "pay period label, e.g. Jan-2026")
	out := flag.String("out", "payslips", "output directory")
	columns := flag.Bool("columns", false, "print the column report and exit")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	format, err := payslip.FormatFromFilename(*file)
	if err != nil {
		log.Fatal(err)
	}
	table, err := payslip.LoadTable(data, format)
	if err != nil {
		log.Fatalf("load %s: %v", *file, err)
	}

	if *columns {
		printColumns(table)
		return
	}
	if strings.TrimSpace(*period) == "" {
		log.Fatal("-period is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, table, *period, *out); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, table *payslip.RawTable, period, out string) error {
	cfg := config.Load()
	generator, err := render.New(cfg)
	if err != nil {
		return err
	}
	profile, err := config.LoadCompany(cfg)
	if err != nil {
		return err
	}
	// Files written for a local hand-off are left unencrypted.
	plain, err := cryptoutil.New("")
	if err != nil {
		return err
	}
	objects, err := storage.NewLocal(out, plain)
	if err != nil {
		return err
	}

	processor := &payslip.Processor{
		Generator:     generator,
		Storage:       objects,
		Company:       payslip.Company{Name: profile.Name, Address: profile.Address, City: profile.City, Logo: profile.Logo},
		RenderTimeout: cfg.RenderTimeout,
	}
	batch, err := processor.Process(ctx, table, strings.TrimSpace(period))
	var empty *payslip.EmptyBatchError
	if err != nil && !errors.As(err, &empty) {
		return err
	}

	fmt.Printf("period:    %s\n", batch.Period)
	fmt.Printf("generated: %d\n", len(batch.Items))
	fmt.Printf("skipped:   %d\n", batch.Skipped)
	fmt.Printf("errors:    %d\n", batch.Errors)
	if warning := batch.Warning(); warning != "" {
		fmt.Printf("warning:   %s\n", warning)
	}
	for _, f := range batch.Failures {
		fmt.Printf("  row %d %s: %s\n", f.Row, f.EmpID, f.Reason)
	}
	for _, item := range batch.Items {
		fmt.Printf("  %s\n", filepath.Join(out, filepath.FromSlash(item.DocumentKey)))
	}
	return err
}

func printColumns(table *payslip.RawTable) {
	fmt.Println("columns:")
	for _, label := range table.Labels {
		fmt.Printf("  %s\n", label)
	}
	if len(table.Rows) > 0 {
		fmt.Println("first row:")
		first := table.Rows[0]
		for _, label := range table.Labels {
			fmt.Printf("  %s = %q\n", label, first.Values[label])
		}
	}
	report, err := json.MarshalIndent(payslip.InspectTable(table), "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(report))
}
