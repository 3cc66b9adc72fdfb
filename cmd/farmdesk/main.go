package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"farmdesk/internal/config"
	"farmdesk/internal/incident"
	"farmdesk/internal/season"
	"farmdesk/internal/task"
	"farmdesk/internal/workspace"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("farmdesk", pflag.ContinueOnError)
	configPath := flags.String("config", "farmdesk.yml", "path to config file")
	baseURL := flags.String("base-url", "", "override api base url")
	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: farmdesk [flags] <tasks|seasons|incidents> <list|get|create|status|delete> ...")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	client, err := workspace.New(workspace.Options{
		Config: cfg,
		Logger: log.New(os.Stderr, "farmdesk: ", log.LstdFlags),
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	entity, verb, verbArgs := rest[0], rest[1], rest[2:]

	switch entity {
	case "tasks":
		return runTasks(ctx, client, verb, verbArgs)
	case "seasons":
		return runSeasons(ctx, client, verb, verbArgs)
	case "incidents":
		return runIncidents(ctx, client, verb, verbArgs)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
}

func runTasks(ctx context.Context, client *workspace.Client, verb string, args []string) error {
	switch verb {
	case "list":
		flags := pflag.NewFlagSet("tasks list", pflag.ContinueOnError)
		seasonID := flags.Int("season", 0, "limit to one season")
		status := flags.String("status", "", "filter by status")
		if err := flags.Parse(args); err != nil {
			return err
		}
		q := task.ListQuery{Status: *status}
		if *seasonID > 0 {
			page, err := client.Tasks.ListBySeason(ctx, *seasonID, q)
			if err != nil {
				return err
			}
			return printJSON(page)
		}
		page, err := client.Tasks.List(ctx, q)
		if err != nil {
			return err
		}
		return printJSON(page)

	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		t, err := client.Tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(t)

	case "create":
		flags := pflag.NewFlagSet("tasks create", pflag.ContinueOnError)
		title := flags.String("title", "", "task title")
		notes := flags.String("notes", "", "task notes")
		due := flags.String("due", "", "due date (YYYY-MM-DD)")
		seasonID := flags.Int("season", 0, "season id")
		if err := flags.Parse(args); err != nil {
			return err
		}
		p := task.CreatePayload{Title: *title, Notes: *notes, DueDate: *due}
		if *seasonID > 0 {
			p.SeasonID = seasonID
		}
		h, err := client.Tasks.Create(ctx, p)
		if err != nil {
			return err
		}
		created, err := h.Wait(ctx)
		if err != nil {
			return err
		}
		return printJSON(created)

	case "status":
		flags := pflag.NewFlagSet("tasks status", pflag.ContinueOnError)
		to := flags.String("to", "", "target status")
		if err := flags.Parse(args); err != nil {
			return err
		}
		id, err := idArg(flags.Args())
		if err != nil {
			return err
		}
		st, err := task.ParseStatus(*to)
		if err != nil {
			return err
		}
		h, err := client.Tasks.ChangeStatus(ctx, id, task.StatusPayload{Status: st})
		if err != nil {
			return err
		}
		updated, err := h.Wait(ctx)
		if err != nil {
			return err
		}
		return printJSON(updated)

	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		_, err = client.Tasks.Remove(ctx, id).Wait(ctx)
		return err

	default:
		return fmt.Errorf("unknown tasks verb %q", verb)
	}
}

func runSeasons(ctx context.Context, client *workspace.Client, verb string, args []string) error {
	switch verb {
	case "list":
		flags := pflag.NewFlagSet("seasons list", pflag.ContinueOnError)
		plotID := flags.Int("plot", 0, "limit to one plot")
		status := flags.String("status", "", "filter by status")
		if err := flags.Parse(args); err != nil {
			return err
		}
		q := season.ListQuery{Status: *status}
		if *plotID > 0 {
			page, err := client.Seasons.ListByPlot(ctx, *plotID, q)
			if err != nil {
				return err
			}
			return printJSON(page)
		}
		page, err := client.Seasons.List(ctx, q)
		if err != nil {
			return err
		}
		return printJSON(page)

	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		se, err := client.Seasons.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(se)

	case "create":
		flags := pflag.NewFlagSet("seasons create", pflag.ContinueOnError)
		name := flags.String("name", "", "season name")
		plotID := flags.Int("plot", 0, "plot id")
		start := flags.String("start", "", "planned start (YYYY-MM-DD)")
		end := flags.String("end", "", "planned end (YYYY-MM-DD)")
		if err := flags.Parse(args); err != nil {
			return err
		}
		h, err := client.Seasons.Create(ctx, season.CreatePayload{
			Name:         *name,
			PlotID:       *plotID,
			PlannedStart: *start,
			PlannedEnd:   *end,
		})
		if err != nil {
			return err
		}
		created, err := h.Wait(ctx)
		if err != nil {
			return err
		}
		return printJSON(created)

	case "status":
		flags := pflag.NewFlagSet("seasons status", pflag.ContinueOnError)
		to := flags.String("to", "", "target status")
		if err := flags.Parse(args); err != nil {
			return err
		}
		id, err := idArg(flags.Args())
		if err != nil {
			return err
		}
		st, err := season.ParseStatus(*to)
		if err != nil {
			return err
		}
		h, err := client.Seasons.ChangeStatus(ctx, id, season.StatusPayload{Status: st})
		if err != nil {
			return err
		}
		updated, err := h.Wait(ctx)
		if err != nil {
			return err
		}
		return printJSON(updated)

	default:
		return fmt.Errorf("unknown seasons verb %q", verb)
	}
}

func runIncidents(ctx context.Context, client *workspace.Client, verb string, args []string) error {
	switch verb {
	case "list":
		flags := pflag.NewFlagSet("incidents list", pflag.ContinueOnError)
		seasonID := flags.Int("season", 0, "limit to one season")
		severity := flags.String("severity", "", "filter by severity")
		if err := flags.Parse(args); err != nil {
			return err
		}
		q := incident.ListQuery{Severity: *severity}
		if *seasonID > 0 {
			page, err := client.Incidents.ListBySeason(ctx, *seasonID, q)
			if err != nil {
				return err
			}
			return printJSON(page)
		}
		page, err := client.Incidents.List(ctx, q)
		if err != nil {
			return err
		}
		return printJSON(page)

	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		in, err := client.Incidents.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(in)

	default:
		return fmt.Errorf("unknown incidents verb %q", verb)
	}
}

func idArg(args []string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("entity id is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entity id %q", args[0])
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
