// seedcheck prints the first draws of a seed's derived streams, for
// verifying that two builds (or two machines) agree on a performance.
package main

import (
	"flag"
	"fmt"

	"groovegen/rng"
	"groovegen/sequencer"
)

func main() {
	seed := flag.String("seed", "groovegen", "seed to inspect")
	n := flag.Int("n", 8, "draws per stream")
	flag.Parse()

	fmt.Printf("seed %q\n", *seed)
	for i := 0; i < sequencer.NumLanes; i++ {
		for _, purpose := range []string{
			fmt.Sprintf("trig-seq%d", i),
			fmt.Sprintf("drumEvolve-seq%d", i),
		} {
			s := rng.Derive(*seed, purpose)
			fmt.Printf("  %-16s", purpose)
			for k := 0; k < *n; k++ {
				fmt.Printf(" %.6f", s.Next())
			}
			fmt.Println()
		}
	}
}
