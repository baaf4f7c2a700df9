package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/decisions/access"
	"mercator-hq/tabula/pkg/decisions/climate"
	"mercator-hq/tabula/pkg/decisions/orders"
	"mercator-hq/tabula/pkg/machine"
	"mercator-hq/tabula/pkg/telemetry/logging"
)

var demoCmd = &cobra.Command{
	Use:   "demo [access|climate|orders]",
	Short: "Walk through the built-in demo decisions",
	Long: `Walk through the built-in demo decision models.

  access   discrete first-match access-control table
  climate  continuous strict HVAC table
  orders   guarded order-processing state machine`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"access", "climate", "orders"},
	RunE:      runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "text"})
	if err != nil {
		return err
	}

	switch args[0] {
	case "access":
		return demoAccess(logger)
	case "climate":
		return demoClimate(logger)
	case "orders":
		return demoOrders()
	default:
		return fmt.Errorf("unknown demo %q", args[0])
	}
}

func demoAccess(logger *slog.Logger) error {
	ev, err := access.NewEvaluator(nil, logger)
	if err != nil {
		return err
	}

	requests := []struct {
		role     access.Role
		resource access.Resource
		action   access.Action
		isOwner  bool
	}{
		{access.RoleAdmin, access.ResourceAuditLog, access.ActionDelete, false},
		{access.RoleEditor, access.ResourceDocument, access.ActionWrite, false},
		{access.RoleEditor, access.ResourceDocument, access.ActionDelete, false},
		{access.RoleEditor, access.ResourceDocument, access.ActionDelete, true},
		{access.RoleViewer, access.ResourceReport, access.ActionRead, false},
		{access.RoleViewer, access.ResourceReport, access.ActionWrite, false},
		{access.RoleEditor, access.ResourceAuditLog, access.ActionRead, true},
	}

	for _, r := range requests {
		verdict, err := access.Decide(ev, r.role, r.resource, r.action, r.isOwner)
		if err != nil {
			return err
		}
		fmt.Printf("%-7s %-9s %-7s owner=%-5v -> %s\n", r.role, r.resource, r.action, r.isOwner, verdict)
	}
	return nil
}

func demoClimate(logger *slog.Logger) error {
	ev, err := climate.NewEvaluator(nil, logger)
	if err != nil {
		return err
	}

	readings := []struct{ temp, humidity float64 }{
		{-5, 50},
		{0, 50},
		{15, 30},
		{20, 50},
		{22.5, 65},
		{25, 40},
		{30, 80},
	}

	for _, r := range readings {
		setting, err := climate.Decide(ev, r.temp, r.humidity)
		if err != nil {
			return err
		}
		fmt.Printf("%6.1f°C %5.1f%% -> %s\n", r.temp, r.humidity, setting)
	}
	return nil
}

func demoOrders() error {
	def, err := orders.New()
	if err != nil {
		return err
	}

	fmt.Printf("machine %s, initial state %s\n\n", def.Name(), def.Initial())

	steps := []struct {
		event machine.Event
		ctx   orders.GuardContext
	}{
		{orders.Submit, orders.GuardContext{}},
		{orders.PaymentProcessed, orders.GuardContext{PaymentSucceeded: false}},
		{orders.PaymentProcessed, orders.GuardContext{PaymentSucceeded: true, InventoryAvailable: false}},
		{orders.InventoryReceived, orders.GuardContext{InventoryAvailable: true}},
		{orders.Ship, orders.GuardContext{}},
		{orders.Deliver, orders.GuardContext{}},
		{orders.Cancel, orders.GuardContext{}},
	}

	state := def.Initial()
	for _, s := range steps {
		res := def.Step(state, s.event, s.ctx)
		marker := "applied"
		if !res.Applied {
			marker = "no-op"
		}
		fmt.Printf("%-14s + %-18s -> %-14s %-8s effects=%v\n",
			res.From, s.event, res.To, marker, res.Effects)
		state = res.To
	}
	return nil
}
