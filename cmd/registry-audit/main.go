// Command registry-audit reads a sqlite registry snapshot and reports the
// audit and suspension posture of every record kind.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"catalogcore/internal/infra/persistence/memory"
	"catalogcore/internal/infra/persistence/sqlite"
	"catalogcore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-audit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var dbPath string
	fs.StringVar(&dbPath, "db", "catalogcore.db", "path to sqlite snapshot")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(dbPath, stdout); err != nil {
		fmt.Fprintf(stderr, "registry audit failed: %v\n", err)
		return 1
	}
	return 0
}

// kindReport aggregates ledger-derived posture for one record kind.
type kindReport struct {
	Kind      domain.ResourceKind
	Drafts    int
	Public    int
	Suspended int
	States    map[domain.AuditState]int
}

func run(dbPath string, stdout io.Writer) error {
	snapshot, err := sqlite.LoadSnapshot(dbPath)
	if err != nil {
		return err
	}
	reports := []kindReport{
		summarize(domain.KindCatalogue, snapshot.Catalogues),
		summarize(domain.KindProvider, snapshot.Providers),
		summarize(domain.KindService, snapshot.Services),
		summarize(domain.KindTool, snapshot.Tools),
		summarize(domain.KindTrainingResource, snapshot.TrainingResources),
		summarize(domain.KindDatasource, snapshot.Datasources),
		summarize(domain.KindInteroperabilityRecord, snapshot.InteroperabilityRecords),
		summarize(domain.KindResourceInteroperabilityRecord, snapshot.ResourceInteroperabilityRecords),
		summarize(domain.KindHelpdesk, snapshot.Helpdesks),
		summarize(domain.KindMonitoring, snapshot.Monitorings),
	}
	for _, report := range reports {
		fmt.Fprintf(stdout, "%s: drafts=%d public=%d suspended=%d\n", report.Kind, report.Drafts, report.Public, report.Suspended)
		states := make([]domain.AuditState, 0, len(report.States))
		for state := range report.States {
			states = append(states, state)
		}
		sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
		for _, state := range states {
			fmt.Fprintf(stdout, "  %s: %d\n", state, report.States[state])
		}
	}
	return nil
}

func summarize[T domain.Payload](kind domain.ResourceKind, part memory.Partitioned[T]) kindReport {
	report := kindReport{Kind: kind, States: map[domain.AuditState]int{}}
	for _, bundle := range part.Draft {
		report.Drafts++
		if bundle.Suspended {
			report.Suspended++
		}
		report.States[bundle.AuditState]++
	}
	for _, bundle := range part.Public {
		report.Public++
		if bundle.Suspended {
			report.Suspended++
		}
	}
	return report
}
