// cmd/transferctl/main.go
// transferctl is the commissioner's tool: it operates directly on the
// state database, so it works with the server stopped and bypasses rate
// limits. Usage:
//
//	transferctl -config config.yaml <command> [flags]
//
// Commands: status, open, close, advance, out, in, pick, revert, history,
// pool, rosters, normalize.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valdraft/transferdesk/internal/config"
	"github.com/valdraft/transferdesk/internal/service"
	"github.com/valdraft/transferdesk/internal/state"
	"github.com/valdraft/transferdesk/internal/transfers"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config")
	league := flag.String("league", "", "league tag")
	manager := flag.String("manager", "", "manager name (out, in, pick, history)")
	playerID := flag.Int("player", 0, "player id (out, in, pick)")
	gw := flag.Int("gw", 0, "gameweek")
	today := flag.Bool("today", false, "limit history to today")
	claimable := flag.Bool("claimable", false, "show the full claimable set instead of the pool")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	command := flag.Arg(0)
	if command == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("load config: %v", err)
	}

	store, err := state.Open(cfg.Database.Filename)
	if err != nil {
		fatal("open state store: %v", err)
	}
	defer store.Close()

	engines, err := service.EnginesFromConfig(cfg, nil)
	if err != nil {
		fatal("build engines: %v", err)
	}
	svc := service.New(store, engines, cfg.Leagues, service.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *league == "" && command != "leagues" {
		fatal("-league is required")
	}

	switch command {
	case "leagues":
		for _, tag := range svc.Leagues() {
			fmt.Println(tag)
		}
	case "status":
		runStatus(ctx, svc, *league)
	case "open":
		requireGW(*gw)
		if err := svc.OpenWindow(ctx, *league, *gw); err != nil {
			fatal("open window: %v", err)
		}
		runStatus(ctx, svc, *league)
	case "close":
		if err := svc.CloseWindow(ctx, *league); err != nil {
			fatal("close window: %v", err)
		}
		fmt.Println("window closed")
	case "advance":
		if err := svc.AdvanceTurn(ctx, *league); err != nil {
			fatal("advance turn: %v", err)
		}
		runStatus(ctx, svc, *league)
	case "out":
		requireTransferFlags(*manager, *playerID, *gw)
		if err := svc.TransferOut(ctx, *league, *manager, *playerID, *gw); err != nil {
			fatal("transfer out: %v", err)
		}
		runStatus(ctx, svc, *league)
	case "in":
		requireTransferFlags(*manager, *playerID, *gw)
		if err := svc.TransferIn(ctx, *league, *manager, *playerID, *gw); err != nil {
			fatal("transfer in: %v", err)
		}
		runStatus(ctx, svc, *league)
	case "pick":
		requireTransferFlags(*manager, *playerID, *gw)
		if err := svc.PickTransferPlayer(ctx, *league, *manager, *playerID, *gw); err != nil {
			fatal("pick transfer player: %v", err)
		}
		fmt.Printf("player %d assigned to %s\n", *playerID, *manager)
	case "revert":
		if err := svc.RevertLastTransferOut(ctx, *league); err != nil {
			fatal("revert: %v", err)
		}
		runStatus(ctx, svc, *league)
	case "history":
		runHistory(ctx, svc, *league, *manager, *today)
	case "pool":
		runPool(ctx, svc, *league, *claimable)
	case "rosters":
		runRosters(ctx, svc, *league)
	case "normalize":
		requireGW(*gw)
		if err := svc.NormalizeAll(ctx, *league, *gw); err != nil {
			fatal("normalize: %v", err)
		}
		fmt.Println("rosters normalized")
	default:
		fatal("unknown command %q", command)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireGW(gw int) {
	if gw <= 0 {
		fatal("-gw is required")
	}
}

func requireTransferFlags(manager string, playerID, gw int) {
	if manager == "" || playerID <= 0 {
		fatal("-manager and -player are required")
	}
	requireGW(gw)
}

func runStatus(ctx context.Context, svc *service.Service, league string) {
	status, err := svc.Status(ctx, league)
	if err != nil {
		fatal("status: %v", err)
	}
	if !status.Active {
		fmt.Println("no active window")
		return
	}
	fmt.Printf("window: gw %d, round %d/%d\n", status.GW, status.Round, status.TotalRounds)
	fmt.Printf("on the clock: %s (%s)\n", status.Manager, status.Phase)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Manager", "State")
	for i, m := range status.Order {
		mark := ""
		if m == status.Manager {
			mark = "<- " + string(status.Phase)
		}
		table.Append(strconv.Itoa(i+1), m, mark)
	}
	table.Render()
}

func runHistory(ctx context.Context, svc *service.Service, league, manager string, today bool) {
	entries, err := svc.History(ctx, league, manager, today)
	if err != nil {
		fatal("history: %v", err)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("When", "GW", "Manager", "Action", "Out", "In")
	for _, entry := range entries {
		table.Append(
			entry.Timestamp.UTC().Format("01-02 15:04"),
			strconv.Itoa(entry.GW),
			entry.Manager,
			string(entry.Action),
			playerLabel(entry.OutPlayer),
			playerLabel(entry.InPlayer),
		)
	}
	table.Render()
}

func runPool(ctx context.Context, svc *service.Service, league string, claimable bool) {
	var players []transfers.Player
	var err error
	if claimable {
		players, err = svc.ClaimablePlayers(ctx, league)
	} else {
		players, err = svc.AvailablePlayers(ctx, league)
	}
	if err != nil {
		fatal("pool: %v", err)
	}
	renderPlayers(players)
}

func runRosters(ctx context.Context, svc *service.Service, league string) {
	rosters, err := svc.Rosters(ctx, league)
	if err != nil {
		fatal("rosters: %v", err)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Manager", "ID", "Name", "Pos", "Status", "In GW")
	for manager, roster := range rosters {
		for _, p := range roster {
			table.Append(
				manager,
				strconv.Itoa(p.ID),
				p.FullName,
				p.Position,
				p.Status,
				strconv.Itoa(p.TransferredInGW),
			)
		}
	}
	table.Render()
}

func renderPlayers(players []transfers.Player) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Club", "Pos", "Status", "Out GW")
	for _, p := range players {
		table.Append(
			strconv.Itoa(p.ID),
			p.FullName,
			p.ClubName,
			p.Position,
			p.Status,
			strconv.Itoa(p.TransferredOutGW),
		)
	}
	table.Render()
}

func playerLabel(p *transfers.Player) string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return fmt.Sprintf("%s (%d)", p.FullName, p.ID)
	}
	return strconv.Itoa(p.ID)
}
