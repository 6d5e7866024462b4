package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/engine"
	"github.com/ravenhollow/corvid/pkg/engine/console"
	"github.com/ravenhollow/corvid/pkg/engine/uci"
	"github.com/seekerror/logw"
)

var (
	hash    = flag.Int("hash", engine.DefaultHash, "Transposition table size in MB")
	depth   = flag.Int("depth", 0, "Hard search depth limit (zero for none)")
	useBook = flag.Bool("book", true, "Consult the fixed opening book before searching")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

CORVID is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "corvid", "ravenhollow",
		engine.WithOptions(engine.Options{Hash: *hash, Depth: *depth}),
		engine.WithBook(mustBook()),
		engine.WithZobristSeed(time.Now().UnixNano()),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		var opts []uci.Option
		if *useBook {
			opts = append(opts, uci.UseBook(time.Now().UnixNano()))
		}

		driver, out := uci.NewDriver(ctx, e, in, opts...)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

// mustBook builds the engine's fixed opening book. It panics on error: the
// lines below are hardcoded and validated at startup, so a failure here means
// a typo in this file, not anything runtime-dependent.
func mustBook() engine.Book {
	// The book keys its lines by cropped FEN, not by Zobrist hash, so the table
	// used to replay these lines during construction need not be the same
	// table instance the running engine hashes positions with.
	zt := board.NewZobristTable(0)
	book, err := engine.NewBook(zt, []engine.Line{
		{"e2e4", "c7c5"},
		{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"},
		{"e2e4", "e7e6", "d2d4", "d7d5"},
		{"e2e4", "c7c6", "d2d4", "d7d5"},
		{"d2d4", "g8f6", "c2c4", "e7e6", "b1c3", "f8b4"},
		{"d2d4", "d7d5", "c2c4", "e7e6"},
		{"d2d4", "d7d5", "c2c4", "c7c6"},
		{"c2c4", "e7e5"},
		{"g1f3", "d7d5", "c2c4"},
	})
	if err != nil {
		panic(err)
	}
	return book
}
