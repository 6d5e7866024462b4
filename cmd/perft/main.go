// perft is a movegen debugging tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/movegen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move, at the final depth")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	pos, _, _, _, err := fen.Decode(*position, true)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()

		if *divide && i == *depth {
			moves, total := movegen.PerftDivide(pos, i)
			for m, n := range moves {
				fmt.Printf("%v: %v\n", m, n)
			}
			fmt.Printf("total: %v\n", total)
			fmt.Printf("perft,%v,%v,%v,%v\n", *position, i, total, time.Since(start).Microseconds())
			continue
		}

		nodes := movegen.Perft(pos, i)
		fmt.Printf("perft,%v,%v,%v,%v\n", *position, i, nodes, time.Since(start).Microseconds())
	}
}
