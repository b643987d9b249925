package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/yungbote/studynotion-backend/internal/app"
)

func main() {
	var configPath string
	var apply bool
	var limit int
	flag.StringVar(&configPath, "config", "", "directory holding app.env")
	flag.BoolVar(&apply, "apply", false, "remove orphan media, stale links and orphaned progress")
	flag.IntVar(&limit, "limit", 50, "max cascade runs listed per status")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	a, err := app.New(ctx, configPath)
	if err != nil {
		color.Red("init app: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.Reconcile(ctx, apply, limit)
	if err != nil {
		color.Red("reconcile: %v", err)
		os.Exit(1)
	}

	printMedia(report)
	printLinks(report)
	printProgress(report)
	printRuns(report)

	if !apply {
		color.Cyan("\nDry run. Re-run with --apply to remove the rows and files above.")
	}
}

func heading(title string, n int) bool {
	if n == 0 {
		color.Green("\n%s: none", title)
		return false
	}
	color.Yellow("\n%s: %d", title, n)
	return true
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func printMedia(r *app.ReconcileReport) {
	if !heading("Orphan media", len(r.OrphanMedia)) {
		return
	}
	table := newTable("Kind", "Key", "Removed", "Error")
	for _, o := range r.OrphanMedia {
		table.Append([]string{string(o.Kind), o.Key, strconv.FormatBool(o.Removed), o.Error})
	}
	table.Render()
}

func printLinks(r *app.ReconcileReport) {
	if !heading("Stale links", len(r.StaleLinks)) {
		return
	}
	table := newTable("ID", "Field", "Parent", "Child")
	for _, l := range r.StaleLinks {
		table.Append([]string{strconv.FormatUint(uint64(l.ID), 10), string(l.Field), l.ParentID.String(), l.ChildID.String()})
	}
	table.Render()
	if r.Applied {
		fmt.Printf("removed %d links\n", r.LinksRemoved)
	}
}

func printProgress(r *app.ReconcileReport) {
	if !heading("Progress rows for deleted courses", len(r.OrphanProgress)) {
		return
	}
	table := newTable("ID", "Course", "User", "Completed")
	for _, p := range r.OrphanProgress {
		table.Append([]string{p.ID.String(), p.CourseID.String(), p.UserID.String(), strconv.Itoa(len(p.CompletedVideos))})
	}
	table.Render()
	if r.Applied {
		fmt.Printf("removed %d progress rows\n", r.ProgressPurged)
	}
}

func printRuns(r *app.ReconcileReport) {
	if !heading("Incomplete cascade runs", len(r.IncompleteRuns)) {
		return
	}
	table := newTable("Run", "Kind", "Target", "Status", "Failed step", "Step target", "Error")
	for _, ir := range r.IncompleteRuns {
		run := ir.Run
		if len(ir.FailedSteps) == 0 {
			table.Append([]string{run.ID.String(), run.Kind, run.TargetID.String(), run.Status, "", "", ""})
			continue
		}
		for _, s := range ir.FailedSteps {
			table.Append([]string{run.ID.String(), run.Kind, run.TargetID.String(), run.Status, s.Step, s.Target, s.Error})
		}
	}
	table.Render()
	color.Cyan("Deleting the target again as its original actor sweeps what remains.")
}
