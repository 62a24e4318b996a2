// cardroom-odds computes win/tie equity for hold'em hands from the
// command line, using the same evaluator the tables run.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgray/cardroom/internal/deck"
	"github.com/pgray/cardroom/internal/poker"
	"github.com/pgray/cardroom/internal/randutil"
)

var CLI struct {
	Hands      []string `arg:"" required:"" help:"Hole cards per player, e.g. 'AcKd' 'QhJs'"`
	Board      string   `short:"b" help:"Community cards already dealt (e.g. 'Td7s8h')"`
	Iterations int      `short:"i" default:"100000" help:"Monte Carlo samples when the board is open"`
	Seed       int64    `help:"RNG seed, 0 derives one from the clock"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	handStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tieStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func main() {
	kctx := kong.Parse(&CLI)

	holes, order, err := parseHands(CLI.Hands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing hands: %v\n", err)
		kctx.Exit(1)
	}

	var board []deck.Card
	if CLI.Board != "" {
		board, err = deck.ParseCards(CLI.Board)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing board: %v\n", err)
			kctx.Exit(1)
		}
		if len(board) > 5 {
			fmt.Fprintln(os.Stderr, "Board cannot have more than 5 cards")
			kctx.Exit(1)
		}
	}

	if err := checkDuplicates(holes, board); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	win, tie := poker.Odds(holes, board, randutil.New(seed), CLI.Iterations)
	elapsed := time.Since(start)

	if len(board) > 0 {
		fmt.Printf("%s\n%s\n\n", headerStyle.Render("board"), cardList(board))
	}

	sort.SliceStable(order, func(i, j int) bool { return win[order[i]] > win[order[j]] })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("hand"), headerStyle.Render("win"), headerStyle.Render("tie"))
	for _, hand := range order {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			handStyle.Render(hand),
			winStyle.Render(fmt.Sprintf("%.1f%%", win[hand]*100)),
			tieStyle.Render(fmt.Sprintf("%.1f%%", tie[hand]*100)))
	}
	_ = w.Flush()

	fmt.Printf("\ncomputed in %v\n", elapsed.Truncate(time.Millisecond))
}

func parseHands(args []string) (map[string][]deck.Card, []string, error) {
	holes := make(map[string][]deck.Card, len(args))
	order := make([]string, 0, len(args))
	for i, arg := range args {
		cards, err := deck.ParseCards(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		if len(cards) != 2 {
			return nil, nil, fmt.Errorf("hand %d: need exactly 2 cards, got %d", i+1, len(cards))
		}
		key := cardList(cards)
		if _, dup := holes[key]; dup {
			return nil, nil, fmt.Errorf("hand %d: duplicate of an earlier hand", i+1)
		}
		holes[key] = cards
		order = append(order, key)
	}
	return holes, order, nil
}

func checkDuplicates(holes map[string][]deck.Card, board []deck.Card) error {
	seen := make(map[deck.Card]bool)
	for _, c := range board {
		if seen[c] {
			return fmt.Errorf("duplicate card: %s", c)
		}
		seen[c] = true
	}
	for _, cards := range holes {
		for _, c := range cards {
			if seen[c] {
				return fmt.Errorf("duplicate card: %s", c)
			}
			seen[c] = true
		}
	}
	return nil
}

func cardList(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
