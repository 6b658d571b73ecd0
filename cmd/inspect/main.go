// Command inspect dumps the registered proof tables: every seal, PoSt,
// update and aggregation variant with its frozen identity, circuit
// identifier and shape parameters.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/policy"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

func main() {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)

	fmt.Fprintln(w, "SEAL PROOFS")
	fmt.Fprintln(w, "id\tname\tsize\tversion\tfeatures\tpartitions\tporep id\tcircuit")
	for _, p := range registry.SealProofs() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			int(p), p, p.SectorSize(), p.Version(),
			apiver.FeatureNames(p.Features()), p.Partitions(),
			p.PorepID(), p.CircuitIdentifier())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "POST PROOFS")
	fmt.Fprintln(w, "id\tname\ttype\tsize\tversion\tsectors\tchallenges\tcircuit")
	for _, p := range registry.PoStProofs() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d\t%d\t%s\n",
			int(p), p, p.Type(), p.SectorSize(), p.Version(),
			p.SectorCount(), p.ChallengeCount(), p.CircuitIdentifier())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "UPDATE PROOFS")
	fmt.Fprintln(w, "id\tname\tsize\tversion\tpartitions\tporep id\tcircuit")
	for _, p := range registry.UpdateProofs() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\t%s\n",
			int(p), p, p.SectorSize(), p.Version(), p.Partitions(),
			p.PorepID(), p.CircuitIdentifier())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "AGGREGATION SCHEMES")
	fmt.Fprintln(w, "id\tname\tversion\tmax proofs")
	for _, p := range registry.AggregationProofs() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", int(p), p, p.Version(), p.MaxProofCount())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FEATURE GATES")
	fmt.Fprintln(w, "feature\tintroduced at")
	pol := policy.Default()
	for _, f := range []apiver.Feature{
		apiver.FeatureAggregation,
		apiver.FeatureSyntheticPoRep,
		apiver.FeatureNonInteractivePoRep,
		apiver.FeatureFixedRowsToDiscard,
	} {
		if v, ok := pol.IntroducedAt(f); ok {
			fmt.Fprintf(w, "%s\t%s\n", f, v)
		}
	}

	w.Flush()
}
